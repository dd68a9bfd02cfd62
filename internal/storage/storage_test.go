package storage

import "testing"

func TestAccountFolder(t *testing.T) {
	// md5("user@example.com")
	want := "b58996c504c5638798eb6b511e6f49af"

	if got := AccountFolder("user@example.com"); got != want {
		t.Fatalf("AccountFolder = %q, want %q", got, want)
	}

	// normalization must happen before hashing
	if got := AccountFolder("  User@EXAMPLE.com "); got != want {
		t.Fatalf("AccountFolder with unnormalized input = %q, want %q", got, want)
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, p := range []string{PlaceholderRecipePhoto, DefaultAvatarMan, DefaultAvatarWoman} {
		if !IsPlaceholder(p) {
			t.Errorf("IsPlaceholder(%q) = false, want true", p)
		}
	}
	if IsPlaceholder("/uploads/abc/photo.webp") {
		t.Error("IsPlaceholder reported a user upload as a placeholder")
	}
}
