package storage

import "testing"

func TestExtractPublicID(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "hosted delivery url with version",
			url:  "https://res.example.com/demo/image/upload/v1699999999/ai-image-studio/generated/abc123.png",
			want: "ai-image-studio/generated/abc123",
		},
		{
			name: "local url with short version",
			url:  "http://localhost:8080/static/image/upload/v1/ai-image-studio/modified/def456.jpg",
			want: "ai-image-studio/modified/def456",
		},
		{
			name: "no version segment",
			url:  "https://res.example.com/demo/image/upload/ai-image-studio/generated/abc123.png",
			want: "ai-image-studio/generated/abc123",
		},
		{
			name: "no extension",
			url:  "https://res.example.com/demo/image/upload/v1/folder/abc123",
			want: "folder/abc123",
		},
		{
			name:    "missing upload marker",
			url:     "https://res.example.com/demo/image/v1/folder/abc123.png",
			wantErr: true,
		},
		{
			name:    "nothing after marker",
			url:     "https://res.example.com/demo/image/upload",
			wantErr: true,
		},
		{
			name:    "only version after marker",
			url:     "https://res.example.com/demo/image/upload/v1699999999",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractPublicID(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestObjectKeyRoundTrip(t *testing.T) {
	key := ObjectKey("ai-image-studio/generated/abc123", "png")
	if key != "image/upload/v1/ai-image-studio/generated/abc123.png" {
		t.Fatalf("unexpected key: %s", key)
	}
	got, err := ExtractPublicID("https://media.test/" + key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ai-image-studio/generated/abc123" {
		t.Fatalf("round trip mismatch: %s", got)
	}
}

func TestExtensionForMime(t *testing.T) {
	cases := map[string]string{
		"image/png":  "png",
		"image/jpeg": "jpg",
		"image/jpg":  "jpg",
		"IMAGE/JPEG": "jpg",
		"image/webp": "webp",
		"image/gif":  "gif",
		"":           "png",
		"text/plain": "png",
	}
	for mime, want := range cases {
		if got := ExtensionForMime(mime); got != want {
			t.Errorf("ExtensionForMime(%q) = %q, want %q", mime, got, want)
		}
	}
}
