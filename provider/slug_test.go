package provider

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "OpenAI", expected: "openai"},
		{name: "space becomes hyphen", input: "Hugging Face", expected: "hugging-face"},
		{name: "punctuation collapsed", input: "DALL·E", expected: "dall-e"},
		{name: "multiple separators", input: "A -- B", expected: "a-b"},
		{name: "trailing separator trimmed", input: "vLLM!", expected: "vllm"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.input)
			if got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			// Slugs are fixed points: re-slugifying never changes them
			if again := Slugify(got); again != got {
				t.Errorf("Slugify not idempotent: %q -> %q", got, again)
			}
		})
	}
}

// Distinct display names can collide on one slug. The catalog avoids
// this by construction; the collision itself is a known limitation.
func TestSlugifyCollision(t *testing.T) {
	a := Slugify("Llama Chat")
	b := Slugify("llama_chat")
	if a != b {
		t.Fatalf("expected colliding slugs, got %q and %q", a, b)
	}
	if a != "llama-chat" {
		t.Errorf("collided slug = %q", a)
	}
}

func TestCatalogSlugsMatchNames(t *testing.T) {
	for _, entry := range CompatCatalog {
		if entry.Slug != Slugify(entry.Name) {
			t.Errorf("entry %q: slug %q does not match Slugify(name) = %q",
				entry.Name, entry.Slug, Slugify(entry.Name))
		}
	}
}

// Every adapter, not just the compat catalog, derives its slug from its
// display name.
func TestAllProviderSlugsMatchNames(t *testing.T) {
	for _, slug := range Slugs() {
		p, err := New(slug, Deps{})
		if err != nil {
			t.Fatalf("construct %q: %v", slug, err)
		}
		if p.Slug() != Slugify(p.Name()) {
			t.Errorf("%s: slug %q does not match Slugify(name) = %q",
				p.Name(), p.Slug(), Slugify(p.Name()))
		}
	}
}
