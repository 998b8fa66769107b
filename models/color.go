package models

// AnalyzeColorRequest represents the request body for color analysis
type AnalyzeColorRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// AnalyzeColorResponse represents the sampled accent color of an image
type AnalyzeColorResponse struct {
	HexColor string `json:"hexColor"`
	IconName string `json:"iconName"`
}

// FocalWindowResponse is returned after a focal window creative is generated
type FocalWindowResponse struct {
	OK             bool   `json:"ok"`
	SVGURL         string `json:"svgUrl"`
	PNGURL         string `json:"pngUrl,omitempty"`
	ExtractedColor string `json:"extractedColor"`
	Message        string `json:"message"`
}
