package iconcomposer

import (
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// AssetSource resolves a symbolic reference such as
// "__base__/graphics/icons/iron-plate.png" to a decoded image. Returned
// images are treated as read-only.
type AssetSource interface {
	Open(ref string) (image.Image, error)
}

// SlackMode selects how a canvas recomposed with slack is brought back to
// the output size.
type SlackMode uint8

const (
	// SlackCrop cuts the slack margin away around the center, leaving every
	// layer at its placed size and position.
	SlackCrop SlackMode = iota
	// SlackFit resamples the whole slack canvas down to the output size.
	// Content rescued by the retry stays visible; every layer shrinks.
	SlackFit
)

// maxLayerFactor bounds the resized side of a layer relative to the
// composition canvas. Larger layers come from degenerate scales.
const maxLayerFactor = 8

type Options struct {
	// Side length of the square output image in pixels.
	OutputSize int
	// Upper bound of the retry margin. Overflows larger than this are
	// reported as bad and clipped.
	MaxSlack int
	// How a slack canvas is reduced to OutputSize.
	SlackMode SlackMode
	// Receives retry diagnostics and bad-overflow warnings. Nil discards.
	Logger *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		OutputSize: 64,
		MaxSlack:   4,
		SlackMode:  SlackCrop,
	}
}

// Result is one rendered icon.
type Result struct {
	Image    *image.NRGBA // straight alpha, OutputSize×OutputSize
	Overflow Overflow
	Passes   int  // composition passes run, 1 or 2
	Ghost    bool // alpha recovery ran
}

// Engine renders icon specs. It holds no per-icon state and is safe for
// concurrent use as long as its AssetSource is.
type Engine struct {
	src AssetSource
	opt Options
	log *zap.Logger
}

func NewEngine(src AssetSource, opt Options) *Engine {
	def := DefaultOptions()
	if opt.OutputSize <= 0 {
		opt.OutputSize = def.OutputSize
	}
	if opt.MaxSlack < 0 {
		opt.MaxSlack = 0
	}
	l := opt.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Engine{src: src, opt: opt, log: l}
}

// OutputSize returns the configured output resolution.
func (e *Engine) OutputSize() int {
	return e.opt.OutputSize
}

// Composite renders spec. Identical specs over identical asset bytes give
// byte-identical images.
func (e *Engine) Composite(spec IconSpec) (Result, error) {
	switch {
	case spec.Layered():
		return e.compositeLayers(spec)
	case spec.Icon != "":
		return e.compositeSingle(spec)
	default:
		return Result{}, ErrNoIcon
	}
}

// Composite renders spec with default options at the given resolution.
func Composite(spec IconSpec, src AssetSource, outputSize int) (Result, error) {
	opt := DefaultOptions()
	opt.OutputSize = outputSize
	return NewEngine(src, opt).Composite(spec)
}

func (e *Engine) compositeSingle(spec IconSpec) (Result, error) {
	if spec.IconSize <= 0 {
		return Result{}, fmt.Errorf("%w: %q has no icon_size", ErrMalformedSpec, spec.Icon)
	}
	img, err := e.load(spec.Icon)
	if err != nil {
		return Result{}, err
	}
	cropped := cropSquare(img, spec.IconSize)
	out := e.opt.OutputSize
	canvas := image.NewRGBA(image.Rect(0, 0, out, out))
	if cropped.Bounds() == canvas.Bounds() {
		copy(canvas.Pix, cropped.Pix)
	} else {
		draw.BiLinear.Scale(canvas, canvas.Bounds(), cropped, cropped.Bounds(), draw.Src, nil)
	}
	return Result{Image: unpremultiply(canvas), Passes: 1}, nil
}

func (e *Engine) compositeLayers(spec IconSpec) (Result, error) {
	out := e.opt.OutputSize
	implicit, err := ImplicitScale(spec.Icons[0], spec.IconSize, out)
	if err != nil {
		return Result{}, err
	}

	plans := make([]layerPlan, 0, len(spec.Icons))
	ghost := false
	for i, l := range spec.Icons {
		size := l.size(spec.IconSize)
		if size <= 0 {
			return Result{}, fmt.Errorf("%w: layer %d has no icon_size", ErrMalformedSpec, i)
		}
		if l.Icon == "" {
			return Result{}, fmt.Errorf("%w: layer %d has no icon", ErrMalformedSpec, i)
		}
		img, err := e.load(l.Icon)
		if err != nil {
			return Result{}, fmt.Errorf("layer %d: %w", i, err)
		}
		p := newLayerPlan(img, l, size, implicit)
		if limit := maxLayerFactor * (out + 2*e.opt.MaxSlack); p.side > limit {
			return Result{}, fmt.Errorf("%w: layer %d resizes to %dpx, limit %dpx", ErrMalformedSpec, i, p.side, limit)
		}
		ghost = ghost || p.ghost
		plans = append(plans, p)
	}

	c, ev, passes := composeWithRetry(plans, out, e.opt.MaxSlack)
	switch ev.Kind {
	case OverflowMinor:
		e.log.Debug("icon overflow corrected",
			zap.String("icon", spec.Name),
			zap.Int("overflow", ev.Pixels),
			zap.Int("slack", ev.Slack),
			zap.Strings("tints", layerTints(plans)))
	case OverflowBad:
		e.log.Warn("icon overflow clipped",
			zap.String("icon", spec.Name),
			zap.Int("overflow", ev.Pixels),
			zap.Int("slack", ev.Slack),
			zap.Strings("tints", layerTints(plans)))
	}

	canvas := c.canvas
	if c.footprint != nil {
		canvas = recoverGhosts(canvas, c.footprint)
	}
	return Result{
		Image:    unpremultiply(e.trimSlack(canvas, ev.Slack)),
		Overflow: ev,
		Passes:   passes,
		Ghost:    c.footprint != nil,
	}, nil
}

// trimSlack reduces a canvas with slack margin back to the output size.
func (e *Engine) trimSlack(canvas *image.RGBA, slack int) *image.RGBA {
	if slack == 0 {
		return canvas
	}
	out := e.opt.OutputSize
	dst := image.NewRGBA(image.Rect(0, 0, out, out))
	switch e.opt.SlackMode {
	case SlackFit:
		draw.BiLinear.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	default:
		draw.Draw(dst, dst.Bounds(), canvas, image.Pt(slack, slack), draw.Src)
	}
	return dst
}

// layerTints lists the tint of every layer as #rrggbb, bottom first.
func layerTints(plans []layerPlan) []string {
	hex := make([]string, len(plans))
	for i, p := range plans {
		hex[i] = p.tint.Hex()
	}
	return hex
}

// load opens ref and returns a private premultiplied copy.
func (e *Engine) load(ref string) (*image.RGBA, error) {
	img, err := e.src.Open(ref)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s is empty", ErrDecode, ref)
	}
	return premultiply(img), nil
}
