package models

// Scene is one step of a story.
type Scene struct {
	Image       *string `json:"image"`
	Prompt      string  `json:"prompt"`
	IsGenerated bool    `json:"isGenerated"`
}

// ScenePatch carries the scene fields to change. Nil fields are left as-is.
type ScenePatch struct {
	Image       *string `json:"image,omitempty"`
	Prompt      *string `json:"prompt,omitempty"`
	IsGenerated *bool   `json:"isGenerated,omitempty"`
}

// Apply merges the non-nil fields of the patch into s.
func (p ScenePatch) Apply(s *Scene) {
	if p.Image != nil {
		img := *p.Image
		s.Image = &img
	}
	if p.Prompt != nil {
		s.Prompt = *p.Prompt
	}
	if p.IsGenerated != nil {
		s.IsGenerated = *p.IsGenerated
	}
}

// Story is a sequence of scenes derived from one uploaded drawing.
// URI is the representative image and may be nil.
type Story struct {
	URI         *string `json:"uri"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Time        string  `json:"time"`
	Scenes      []Scene `json:"scenes"`
}

// HasURI reports whether the story is identified by uri. A nil uri matches
// only stories without a representative image.
func (s *Story) HasURI(uri *string) bool {
	if s.URI == nil || uri == nil {
		return s.URI == nil && uri == nil
	}
	return *s.URI == *uri
}

// SceneImage returns the image shown for scene i: the scene's own image,
// otherwise the story's representative image, otherwise "".
func (s *Story) SceneImage(i int) string {
	if i < 0 || i >= len(s.Scenes) {
		return ""
	}
	if img := s.Scenes[i].Image; img != nil && *img != "" {
		return *img
	}
	if s.URI != nil {
		return *s.URI
	}
	return ""
}

// Clone returns a deep copy so callers cannot mutate store-owned scenes.
func (s Story) Clone() Story {
	out := s
	if s.URI != nil {
		uri := *s.URI
		out.URI = &uri
	}
	if s.Scenes != nil {
		out.Scenes = make([]Scene, len(s.Scenes))
		for i, sc := range s.Scenes {
			if sc.Image != nil {
				img := *sc.Image
				sc.Image = &img
			}
			out.Scenes[i] = sc
		}
	}
	return out
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }
