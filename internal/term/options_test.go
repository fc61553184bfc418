package term

import (
	"strings"
	"testing"
)

func TestParseOutputMode(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputMode
		wantErr bool
	}{
		{"raw", OutputRaw, false},
		{"split", OutputSplit, false},
		{"splitfull", OutputSplitFull, false},
		{"hex", OutputHex, false},
		{"hexnl", OutputHexNewline, false},
		{"", 0, true},
		{"Raw", 0, true},
		{"hexdump", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseOutputMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseOutputMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseInputMode(t *testing.T) {
	if got, err := ParseInputMode("hex"); err != nil || got != InputHex {
		t.Errorf("ParseInputMode(hex) = %v, %v", got, err)
	}
	if got, err := ParseInputMode("raw"); err != nil || got != InputRaw {
		t.Errorf("ParseInputMode(raw) = %v, %v", got, err)
	}
	if _, err := ParseInputMode("binary"); err == nil {
		t.Error("ParseInputMode(binary) should fail")
	}
}

func TestTxNewlineSub(t *testing.T) {
	tests := []struct {
		name string
		mode TxNewline
		want []byte
	}{
		{"raw", TxNewlineRaw, nil},
		{"none", TxNewlineNone, []byte{}},
		{"cr", TxNewlineCR, []byte("\r")},
		{"lf", TxNewlineLF, []byte("\n")},
		{"crlf", TxNewlineCRLF, []byte("\r\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mode.sub()
			if tt.want == nil {
				if got != nil {
					t.Errorf("sub() = %q, want nil", got)
				}
				return
			}
			if got == nil || string(got) != string(tt.want) {
				t.Errorf("sub() = %q, want %q", got, tt.want)
			}
		})
	}

	if mode, err := ParseTxNewline("nl"); err == nil {
		t.Errorf("ParseTxNewline(nl) = %v, want error", mode)
	}
}

func TestRxNewlinePattern(t *testing.T) {
	if RxNewlineRaw.pattern() != nil {
		t.Error("raw mode should have no pattern")
	}

	// crorlf matches either byte; cr must come first so a lone carriage
	// return still triggers the carry hold-back.
	p := RxNewlineCROrLF.pattern()
	if len(p) != 2 || string(p[0]) != "\r" || string(p[1]) != "\n" {
		t.Errorf("crorlf pattern = %q", p)
	}

	if p := RxNewlineCRLF.pattern(); len(p) != 1 || string(p[0]) != "\r\n" {
		t.Errorf("crlf pattern = %q", p)
	}

	if _, err := ParseRxNewline("lfcr"); err == nil {
		t.Error("ParseRxNewline(lfcr) should fail")
	}
}

func TestParseColorChars(t *testing.T) {
	cm, err := ParseColorChars("a,b,0x0a,0x41")
	if err != nil {
		t.Fatalf("ParseColorChars failed: %v", err)
	}
	want := ColorMap{'a': 0, 'b': 1, 0x0a: 2, 'A': 3}
	if len(cm) != len(want) {
		t.Fatalf("ColorMap = %v, want %v", cm, want)
	}
	for b, slot := range want {
		if cm[b] != slot {
			t.Errorf("byte %#x assigned slot %d, want %d", b, cm[b], slot)
		}
	}
}

func TestParseColorCharsDuplicates(t *testing.T) {
	// A repeated byte keeps its first-assigned palette slot, whether it
	// repeats literally or via the hex spelling.
	cm, err := ParseColorChars("x,y,x,0x78")
	if err != nil {
		t.Fatalf("ParseColorChars failed: %v", err)
	}
	if cm['x'] != 0 || cm['y'] != 1 || len(cm) != 2 {
		t.Errorf("ColorMap = %v", cm)
	}
}

func TestParseColorCharsLimit(t *testing.T) {
	if _, err := ParseColorChars("a,b,c,d,e,f,g"); err != nil {
		t.Errorf("seven colors should be accepted: %v", err)
	}
	if _, err := ParseColorChars("a,b,c,d,e,f,g,h"); err == nil {
		t.Error("eight colors should be rejected")
	}
}

func TestParseColorCharsInvalid(t *testing.T) {
	tests := []string{"ab", "0x", "0xzz", "0x100"}
	for _, spec := range tests {
		if _, err := ParseColorChars(spec); err == nil {
			t.Errorf("ParseColorChars(%q) should fail", spec)
		} else if !strings.Contains(err.Error(), spec) && !strings.Contains(err.Error(), "exceeded") {
			t.Errorf("ParseColorChars(%q) error does not name the item: %v", spec, err)
		}
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Output != OutputRaw || opts.Input != InputRaw {
		t.Error("defaults must be raw in both directions")
	}
	if opts.TxNewline != TxNewlineRaw || opts.RxNewline != RxNewlineRaw {
		t.Error("defaults must not substitute newlines")
	}
	if opts.EscapeByte != 0x1D {
		t.Errorf("default escape byte = %#x, want 0x1d", opts.EscapeByte)
	}
	if opts.Columns != 16 {
		t.Errorf("default columns = %d, want 16", opts.Columns)
	}
	if opts.Echo {
		t.Error("echo must default off")
	}
}
