package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register webp decoding
	"golang.org/x/net/context/ctxhttp"

	"github.com/eazisol/podoc/builder"
	"github.com/eazisol/podoc/ir/semantic"
	"github.com/eazisol/podoc/observability"
)

// BearerFetcher fetches URLs with a bearer-token Authorization header.
type BearerFetcher struct {
	Client *http.Client
	Token  string
}

func (f *BearerFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}
	resp, err := ctxhttp.Do(ctx, f.Client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// imagePipeline resolves, decodes and recompresses row images for one
// render. The cache is keyed by product identity so variants of one
// product converge on a single fetched representation; it dies with the
// render.
type imagePipeline struct {
	resolver FileResolver
	fetcher  Fetcher
	log      observability.Logger

	maxW, maxH int
	quality    int
	sigTimeout time.Duration

	cache map[string]*semantic.Image // product id -> image (nil = known absent)
}

func newImagePipeline(opts Options) *imagePipeline {
	return &imagePipeline{
		resolver:   opts.Resolver,
		fetcher:    opts.Fetcher,
		log:        opts.Logger,
		maxW:       opts.ImageMaxWidth,
		maxH:       opts.ImageMaxHeight,
		quality:    opts.JPEGQuality,
		sigTimeout: opts.SignatureTimeout,
		cache:      make(map[string]*semantic.Image),
	}
}

// resolveRowImage implements the per-row fallback chain: the row's own
// variant attributes, then any sibling row of the same product, then
// nothing. Results (including absence) are cached by product id.
func (p *imagePipeline) resolveRowImage(ctx context.Context, item LineItem, all []LineItem) *semantic.Image {
	if img, seen := p.cache[item.ProductID]; seen {
		return img
	}
	steps := []Step[*semantic.Image]{
		{
			Name: "variant attributes",
			Run: func(ctx context.Context) (*semantic.Image, error) {
				url := parseAttributes(item.Attributes).imageURL()
				if url == "" {
					return nil, errAbsent
				}
				return p.fetchAndPrepare(ctx, url)
			},
		},
		{
			Name: "sibling variant",
			Run: func(ctx context.Context) (*semantic.Image, error) {
				for _, other := range all {
					if other.ProductID != item.ProductID || other.VariantID == item.VariantID {
						continue
					}
					if url := parseAttributes(other.Attributes).imageURL(); url != "" {
						return p.fetchAndPrepare(ctx, url)
					}
				}
				return nil, errAbsent
			},
		},
	}
	img, ok := first(ctx, p.log, steps)
	if !ok {
		img = nil
	}
	p.cache[item.ProductID] = img
	return img
}

// fetchAndPrepare turns a stored URL into a drawable image: signed-URL
// resolution for relative paths, byte fetch, decode, then downscale and
// JPEG recompression.
func (p *imagePipeline) fetchAndPrepare(ctx context.Context, url string) (*semantic.Image, error) {
	resolved, err := p.resolveURL(ctx, url)
	if err != nil {
		return nil, err
	}
	data, err := p.fetch(ctx, resolved)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return p.recompress(src), nil
}

func (p *imagePipeline) resolveURL(ctx context.Context, url string) (string, error) {
	if strings.Contains(url, "://") {
		return url, nil
	}
	if p.resolver == nil {
		return "", fmt.Errorf("relative path %q with no file resolver", url)
	}
	return p.resolver.ResolveURL(ctx, url)
}

func (p *imagePipeline) fetch(ctx context.Context, url string) ([]byte, error) {
	if p.fetcher != nil {
		return p.fetcher.Fetch(ctx, url)
	}
	resp, err := ctxhttp.Get(ctx, nil, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// recompress bounds the embedded size of a bitmap: downscale to fit the
// configured box, flatten transparency onto white (JPEG has no alpha and
// a black default looks wrong), and re-encode at the fixed quality.
// Recompression failure falls back to embedding the original bitmap.
func (p *imagePipeline) recompress(src image.Image) *semantic.Image {
	fitted := imaging.Fit(src, p.maxW, p.maxH, imaging.Lanczos)
	bounds := fitted.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.Overlay(flat, fitted, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		p.log.Warn("image recompression failed, embedding original",
			observability.Error("err", err))
		return builder.FromImage(fitted)
	}
	img, err := builder.JPEGImage(buf.Bytes())
	if err != nil {
		p.log.Warn("jpeg wrap failed, embedding original",
			observability.Error("err", err))
		return builder.FromImage(flat)
	}
	return img
}

// loadSignature fetches an approval signature: a direct load bounded by a
// timeout, then a retry through the authenticated fetcher. Both failing
// means the signature slot renders blank; it never fails the document.
func (p *imagePipeline) loadSignature(ctx context.Context, path string) *semantic.Image {
	if path == "" {
		return nil
	}
	steps := []Step[*semantic.Image]{
		{
			Name: "direct load",
			Run: func(ctx context.Context) (*semantic.Image, error) {
				tctx, cancel := context.WithTimeout(ctx, p.sigTimeout)
				defer cancel()
				resolved, err := p.resolveURL(tctx, path)
				if err != nil {
					return nil, err
				}
				resp, err := ctxhttp.Get(tctx, nil, resolved)
				if err != nil {
					return nil, err
				}
				defer resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					return nil, fmt.Errorf("signature load: status %d", resp.StatusCode)
				}
				data, err := io.ReadAll(resp.Body)
				if err != nil {
					return nil, err
				}
				return decodeSignature(data)
			},
		},
		{
			Name: "authenticated fetch",
			Run: func(ctx context.Context) (*semantic.Image, error) {
				if p.fetcher == nil {
					return nil, errAbsent
				}
				resolved, err := p.resolveURL(ctx, path)
				if err != nil {
					return nil, err
				}
				data, err := p.fetcher.Fetch(ctx, resolved)
				if err != nil {
					return nil, err
				}
				return decodeSignature(data)
			},
		},
	}
	img, ok := first(ctx, p.log, steps)
	if !ok {
		p.log.Debug("signature unavailable", observability.String("path", path))
		return nil
	}
	return img
}

// decodeSignature decodes signature bytes, keeping alpha so hand-drawn
// strokes blend over the page.
func decodeSignature(data []byte) (*semantic.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	fitted := imaging.Fit(src, 320, 140, imaging.Lanczos)
	return builder.FromImage(fitted), nil
}
