package hotkeys

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestIgnoreMasks(t *testing.T) {
	caps := uint16(xproto.ModMaskLock)
	num := uint16(xproto.ModMask2)

	got := IgnoreMasks(caps, num, 0, num)
	want := map[uint16]bool{0: true, caps: true, num: true, caps | num: true}
	if len(got) != len(want) {
		t.Fatalf("IgnoreMasks = %v, want %d masks", got, len(want))
	}
	for _, m := range got {
		if !want[m] {
			t.Fatalf("unexpected mask %#x in %v", m, got)
		}
	}
}

func TestIgnoreMasksNone(t *testing.T) {
	got := IgnoreMasks()
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("IgnoreMasks() = %v, want [0]", got)
	}
}

func TestCleanMods(t *testing.T) {
	ignore := IgnoreMasks(uint16(xproto.ModMaskLock), uint16(xproto.ModMask2))
	state := uint16(xproto.ModMask4 | xproto.ModMaskLock | xproto.ModMask2 | xproto.ButtonMask1)
	if got := CleanMods(state, ignore); got != uint16(xproto.ModMask4) {
		t.Fatalf("CleanMods = %#x, want Mod4", got)
	}
	if got := CleanMods(uint16(xproto.ModMask1), nil); got != uint16(xproto.ModMask1) {
		t.Fatalf("CleanMods without ignores = %#x", got)
	}
}
