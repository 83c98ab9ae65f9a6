package container

import "testing"

func TestFileFrameLookup(t *testing.T) {
	f := &File{
		Frames: []FrameRecord{
			{Index: 5, Blob: []byte("a")},
			{Index: 7, Blob: []byte("b")},
		},
	}
	rec, err := f.Frame(7)
	if err != nil {
		t.Fatalf("Frame(7): %v", err)
	}
	if string(rec.Blob) != "b" {
		t.Errorf("Frame(7).Blob = %q, want %q", rec.Blob, "b")
	}
	if _, err := f.Frame(3); err != ErrFrameNotFound {
		t.Errorf("Frame(3) error = %v, want ErrFrameNotFound", err)
	}
}

func TestFileFrameRange(t *testing.T) {
	f := &File{Frames: []FrameRecord{{Index: 10}, {Index: 2}, {Index: 6}}}
	start, end, ok := f.FrameRange()
	if !ok || start != 2 || end != 10 {
		t.Errorf("FrameRange() = (%d, %d, %v), want (2, 10, true)", start, end, ok)
	}

	empty := &File{}
	if _, _, ok := empty.FrameRange(); ok {
		t.Error("FrameRange() on empty file should report ok=false")
	}
}

func TestParseURL(t *testing.T) {
	path, frame, extra, err := ParseURL("zibravdb:///mnt/vdb/clip.zvdb?frame=42&quality=high")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if path != "/mnt/vdb/clip.zvdb" {
		t.Errorf("path = %q, want /mnt/vdb/clip.zvdb", path)
	}
	if frame != 42 {
		t.Errorf("frame = %d, want 42", frame)
	}
	if extra.Get("quality") != "high" {
		t.Errorf("extra[quality] = %q, want high", extra.Get("quality"))
	}
	if extra.Get("frame") != "" {
		t.Error("frame should be consumed out of extra")
	}
}

func TestParseURLDefaultFrame(t *testing.T) {
	path, frame, _, err := ParseURL("zibravdb:///clip.zvdb")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if path != "/clip.zvdb" || frame != 0 {
		t.Errorf("path/frame = %q/%d, want /clip.zvdb/0", path, frame)
	}
}

func TestParseURLWrongScheme(t *testing.T) {
	if _, _, _, err := ParseURL("file:///clip.zvdb"); err != ErrUnsupportedScheme {
		t.Errorf("error = %v, want ErrUnsupportedScheme", err)
	}
}
