package urlbuild

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"ikit/internal/transform"
)

var (
	// DefaultDeviceBreakpoints are common viewport widths in pixels.
	DefaultDeviceBreakpoints = []int{640, 750, 828, 1080, 1200, 1920, 2048, 3840}
	// DefaultImageBreakpoints are widths for small, fixed-size images.
	DefaultImageBreakpoints = []int{16, 32, 48, 64, 96, 128, 256, 384}
)

var viewportWidthToken = regexp.MustCompile(`(^|\s)(1?\d{1,2})vw`)

// ResponsiveOptions describes an image rendered at several widths.
type ResponsiveOptions struct {
	SrcOptions
	// Width is the intended display width in CSS pixels; zero means unknown.
	Width int
	// Sizes is the value of the HTML sizes attribute, if any.
	Sizes string
	// DeviceBreakpoints and ImageBreakpoints override the default candidate
	// pools when non-nil.
	DeviceBreakpoints []int
	ImageBreakpoints  []int
}

// ResponsiveAttributes holds the values for an <img> element.
type ResponsiveAttributes struct {
	Src    string `json:"src"`
	SrcSet string `json:"srcSet,omitempty"`
	Sizes  string `json:"sizes,omitempty"`
	Width  int    `json:"width,omitempty"`
}

type descriptorKind byte

const (
	widthDescriptor   descriptorKind = 'w'
	densityDescriptor descriptorKind = 'x'
)

// Responsive builds src, srcset and sizes with the default builder.
func Responsive(opts ResponsiveOptions) ResponsiveAttributes {
	return defaultBuilder.ResponsiveAttributes(opts)
}

// ResponsiveAttributes builds src, srcset and sizes for opts. Each candidate
// URL appends a {width, crop: at_max} step to the caller's transformation.
func (b *Builder) ResponsiveAttributes(opts ResponsiveOptions) ResponsiveAttributes {
	device := sortedCopy(opts.DeviceBreakpoints, DefaultDeviceBreakpoints)
	image := sortedCopy(opts.ImageBreakpoints, DefaultImageBreakpoints)
	all := append(append([]int{}, image...), device...)
	sort.Ints(all)

	candidates, kind := candidateWidths(all, device, opts.Width, opts.Sizes)

	buildFor := func(width int) string {
		src := opts.SrcOptions
		tr := make(transform.Transformation, 0, len(src.Transformation)+1)
		tr = append(tr, src.Transformation...)
		tr = append(tr, transform.Step{
			{Key: "width", Value: width},
			{Key: "crop", Value: "at_max"},
		})
		src.Transformation = tr
		return b.Build(src)
	}

	attrs := ResponsiveAttributes{Width: opts.Width}
	if len(candidates) == 0 {
		attrs.Src = b.Build(opts.SrcOptions)
	} else {
		entries := make([]string, 0, len(candidates))
		for i, width := range candidates {
			descriptor := i + 1
			if kind == widthDescriptor {
				descriptor = width
			}
			entries = append(entries, buildFor(width)+" "+strconv.Itoa(descriptor)+string(kind))
		}
		attrs.SrcSet = strings.Join(entries, ", ")
		attrs.Src = buildFor(candidates[len(candidates)-1])
	}

	attrs.Sizes = opts.Sizes
	if attrs.Sizes == "" && kind == widthDescriptor {
		attrs.Sizes = "100vw"
	}
	return attrs
}

func candidateWidths(all, device []int, width int, sizes string) ([]int, descriptorKind) {
	if sizes != "" {
		matches := viewportWidthToken.FindAllStringSubmatch(sizes, -1)
		if len(matches) == 0 || len(device) == 0 {
			return all, widthDescriptor
		}
		smallest := -1
		for _, m := range matches {
			percent, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			if smallest < 0 || percent < smallest {
				smallest = percent
			}
		}
		if smallest < 0 {
			return all, widthDescriptor
		}
		minRequired := float64(device[0]) * float64(smallest) / 100
		out := make([]int, 0, len(all))
		for _, w := range all {
			if float64(w) >= minRequired {
				out = append(out, w)
			}
		}
		return out, widthDescriptor
	}

	if width <= 0 {
		return device, widthDescriptor
	}

	if len(all) == 0 {
		return nil, densityDescriptor
	}
	nearest := func(target int) int {
		for _, w := range all {
			if w >= target {
				return w
			}
		}
		return all[len(all)-1]
	}
	one, two := nearest(width), nearest(width*2)
	if one == two {
		return []int{one}, densityDescriptor
	}
	return []int{one, two}, densityDescriptor
}

func sortedCopy(values, fallback []int) []int {
	if values == nil {
		values = fallback
	}
	out := append([]int(nil), values...)
	sort.Ints(out)
	return out
}
