package model

// MaxImageDim is the largest dimension the target platforms accept for
// an uploaded image.
const MaxImageDim = 2000

// Image is a rasterized graph ready for upload.
type Image struct {
	Data   []byte // PNG bytes
	Width  int
	Height int
	Alt    string
}
