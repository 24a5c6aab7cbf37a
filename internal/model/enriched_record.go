package model

// EnrichedRecord is the off-chain view of a token used to render a notification.
type EnrichedRecord struct {
	DescriptorID   int64  `json:"descriptor_id"`
	DescriptorName string `json:"descriptor_name"`
	ImageURL       string `json:"image_url"`
	Holder         string `json:"holder"`
	// Alias is empty when the holder has no registered name.
	Alias string `json:"alias,omitempty"`
	Power int    `json:"power"`
}

// AuthorName is the alias when present, else the lower-cased holder address.
func (r EnrichedRecord) AuthorName() string {
	if r.Alias != "" {
		return r.Alias
	}
	return lower(r.Holder)
}
