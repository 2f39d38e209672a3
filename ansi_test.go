package luma

import (
	"reflect"
	"testing"
)

func parseANSI(s string) []directive {
	var p ansiParser
	var dirs []directive
	for _, r := range s {
		dirs = p.feed(r, dirs)
	}
	return dirs
}

func pc(r rune) directive {
	return directive{kind: dirPutch, ch: r}
}

func TestANSIParser(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []directive
	}{
		{
			"plain text",
			"Hi",
			[]directive{pc('H'), pc('i')},
		},
		{
			"sgr single param",
			"\x1b[31m",
			[]directive{{kind: dirSGR, args: []int{31}}},
		},
		{
			"sgr empty param is reset",
			"\x1b[m",
			[]directive{{kind: dirSGR, args: []int{0}}},
		},
		{
			"sgr multiple params",
			"\x1b[45;37m",
			[]directive{{kind: dirSGR, args: []int{45, 37}}},
		},
		{
			"sgr wrapped text",
			"\x1b[32mOK\x1b[0m",
			[]directive{
				{kind: dirSGR, args: []int{32}},
				pc('O'), pc('K'),
				{kind: dirSGR, args: []int{0}},
			},
		},
		{
			"unsupported csi command swallowed",
			"\x1b[2Jx",
			[]directive{pc('x')},
		},
		{
			"abandoned escape keeps the rune",
			"\x1bZ",
			[]directive{pc('Z')},
		},
		{
			"invalid csi byte degrades to text",
			"\x1b[4!",
			[]directive{pc('!')},
		},
		{
			"trailing escape stays pending",
			"A\x1b",
			[]directive{pc('A')},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseANSI(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestANSIParserKeepsStateBetweenFeeds(t *testing.T) {
	var p ansiParser
	var dirs []directive
	for _, r := range "\x1b[3" {
		dirs = p.feed(r, dirs)
	}
	if len(dirs) != 0 {
		t.Fatalf("directives mid-sequence = %+v, want none", dirs)
	}
	for _, r := range "1mX" {
		dirs = p.feed(r, dirs)
	}
	want := []directive{{kind: dirSGR, args: []int{31}}, pc('X')}
	if !reflect.DeepEqual(dirs, want) {
		t.Errorf("directives = %+v, want %+v", dirs, want)
	}
}

func TestParseSGRParams(t *testing.T) {
	tests := []struct {
		raw  string
		want []int
	}{
		{"", []int{0}},
		{"31", []int{31}},
		{"45;37", []int{45, 37}},
		{";", []int{0, 0}},
		{"007", []int{7}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseSGRParams([]byte(tt.raw)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSGRParams(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
