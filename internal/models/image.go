package models

// ImageRecord is an uploaded drawing as shown in the home gallery.
// URI is an opaque handle to the image bytes and is the matching key for
// update and remove; it is not checked for uniqueness.
type ImageRecord struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

// ImagePatch carries the fields to merge into an ImageRecord. Nil fields are left as-is.
type ImagePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Time        *string `json:"time,omitempty"`
}

// Apply merges the non-nil fields of the patch into img.
func (p ImagePatch) Apply(img *ImageRecord) {
	if p.Title != nil {
		img.Title = *p.Title
	}
	if p.Description != nil {
		img.Description = *p.Description
	}
	if p.Time != nil {
		img.Time = *p.Time
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p ImagePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Time == nil
}
