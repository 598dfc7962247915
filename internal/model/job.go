package model

// ThumbnailJob asks the pipeline to render the thumbnails of one image.
// Ids travel as strings so an incomplete payload can be told apart.
type ThumbnailJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// ThumbnailWidths are the sizes rendered for every image, widest first
var ThumbnailWidths = []int{500, 250, 100}
