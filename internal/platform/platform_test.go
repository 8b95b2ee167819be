package platform

import (
	"reflect"
	"testing"
)

func TestLookup(t *testing.T) {
	ft, ok := Lookup("weapp")
	if !ok {
		t.Fatal("expected weapp to be known")
	}
	if got := ft.Suffix(KindStyle); got != ".wxss" {
		t.Errorf("style suffix = %q, want %q", got, ".wxss")
	}

	if _, ok := Lookup("desktop"); ok {
		t.Error("expected unknown platform to be rejected")
	}
}

func TestFileTypes_Suffixes(t *testing.T) {
	ft, _ := Lookup("alipay")
	want := []string{".axml", ".acss", ".json", ".js"}
	if got := ft.Suffixes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Suffixes() = %v, want %v", got, want)
	}
}

func TestTags(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		mode     string
		want     []string
	}{
		{name: "both", platform: "weapp", mode: "prod", want: []string{"weapp.prod", "prod", "weapp"}},
		{name: "platform only", platform: "weapp", want: []string{"weapp"}},
		{name: "mode only", mode: "dev", want: []string{"dev"}},
		{name: "none", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tags(tt.platform, tt.mode); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tags(%q, %q) = %v, want %v", tt.platform, tt.mode, got, tt.want)
			}
		})
	}
}
