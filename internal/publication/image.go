package publication

import (
	"io/fs"
	"os"
	"strings"

	"github.com/aimlgroup/pubgen/internal/bibtex"
)

// DefaultImage is used when neither a field nor a file supplies an image.
const DefaultImage = "aiml2020small.png"

// ImagesURLPrefix is the site-relative directory images are served from.
const ImagesURLPrefix = "./images/"

// ImageFields are the entry fields that may name an image, highest priority first.
var ImageFields = []string{"anote", "image", "thumbnail", "figure", "cover"}

// ImageExtensions are probed in order when looking for <cite><ext> in the images directory.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".svg", ".gif"}

// ImageSource records which rule produced an image path.
type ImageSource string

const (
	ImageFromField   ImageSource = "field"
	ImageFromFile    ImageSource = "file"
	ImageFromDefault ImageSource = "default"
)

// ImageResolver picks the image for an entry.
type ImageResolver struct {
	// Dir is the images directory. It is only probed for existence.
	Dir fs.FS
	// Default is the file name used when nothing else matches.
	Default string
	// Extensions overrides ImageExtensions when non-empty.
	Extensions []string
}

// NewImageResolver returns a resolver probing the images directory at dir.
func NewImageResolver(dir, defaultImage string) *ImageResolver {
	return &ImageResolver{
		Dir:     os.DirFS(dir),
		Default: defaultImage,
	}
}

// Resolve returns the image path for e and the rule that chose it:
// an explicit image field, then <cite><ext> in the images directory,
// then the default image. A nil resolver only honors image fields and the
// built-in default.
func (r *ImageResolver) Resolve(e bibtex.Entry) (string, ImageSource) {
	if r == nil {
		r = &ImageResolver{}
	}
	for _, field := range ImageFields {
		if v := strings.TrimSpace(e.Get(field)); v != "" {
			return v, ImageFromField
		}
	}

	if cite := strings.TrimSpace(e.Key); cite != "" && r.Dir != nil {
		for _, ext := range r.extensions() {
			name := cite + ext
			if _, err := fs.Stat(r.Dir, name); err == nil {
				return ImagesURLPrefix + name, ImageFromFile
			}
		}
	}

	return ImagesURLPrefix + r.defaultImage(), ImageFromDefault
}

func (r *ImageResolver) extensions() []string {
	if len(r.Extensions) > 0 {
		return r.Extensions
	}
	return ImageExtensions
}

func (r *ImageResolver) defaultImage() string {
	if r.Default == "" {
		return DefaultImage
	}
	return r.Default
}
