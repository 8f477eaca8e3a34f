package scraper

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"

	"carscout/internal/models"
)

const (
	navigationTimeout = 30 * time.Second
	clickTimeout      = 3 * time.Second
	paginationSettle  = 500 * time.Millisecond

	paginationNavSelector  = "nav[aria-label='Pagination Navigation']"
	paginationItemSelector = "ul.v-pagination li"
	numericInputSelector   = "input[type='number'], input[inputmode='numeric'], input[type='tel']"
)

// Banners that cover the filter panel. Checked once, without waiting.
var overlaySelectors = []string{
	"#onetrust-accept-btn-handler",
	"button[id*='accept']",
	"button[class*='accept']",
	"button[aria-label*='Accept']",
	".cookie-banner button",
	".cookie-consent button",
	"button[aria-label='Close']",
	".v-dialog__content--active button[class*='close']",
}

type BrowserOptions struct {
	Timeout   time.Duration
	ChromeBin string
	Headless  bool
}

// BrowserCounter drives a headless Chromium through the site's mileage
// filter and reads the pagination control it renders.
type BrowserCounter struct {
	site *Carsome
	opts BrowserOptions
	log  zerolog.Logger
}

func NewBrowserCounter(site *Carsome, opts BrowserOptions, log zerolog.Logger) *BrowserCounter {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &BrowserCounter{
		site: site,
		opts: opts,
		log:  log.With().Str("module", "browser").Logger(),
	}
}

// CountPages opens the search, applies the max-mileage filter and returns the
// highest page number shown. One browser is launched per call and always
// closed before returning.
func (b *BrowserCounter) CountPages(ctx context.Context, q models.Query) (int, error) {
	browser, cleanup, err := b.launch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer cleanup()

	page, err := stealth.Page(browser)
	if err != nil {
		return 0, fmt.Errorf("failed to open page: %w", err)
	}
	page = page.Context(ctx)

	searchURL := b.site.SearchURL(q)
	b.log.Info().Str("url", searchURL).Msg("Opening search page")

	nav := page.Timeout(navigationTimeout)
	if err := nav.Navigate(searchURL); err != nil {
		return 0, fmt.Errorf("navigation failed: %w", err)
	}
	if err := nav.WaitLoad(); err != nil {
		return 0, fmt.Errorf("page load failed: %w", err)
	}
	nav.CancelTimeout()

	b.dismissOverlays(page)

	if err := b.applyMileageFilter(page, q.MaxMileage); err != nil {
		return 0, err
	}

	labels, err := b.paginationLabels(page)
	if err != nil {
		return 0, err
	}

	pages := MaxPageNumber(labels)
	b.log.Info().Strs("labels", labels).Int("pages", pages).Msg("Pagination read")
	return pages, nil
}

func (b *BrowserCounter) launch(ctx context.Context) (*rod.Browser, func(), error) {
	l := launcher.New().
		Context(ctx).
		Headless(b.opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("window-size", "1920,1080").
		Set("user-agent", userAgent)

	if chromiumPath := findChromiumPath(b.opts.ChromeBin); chromiumPath != "" {
		b.log.Debug().Str("path", chromiumPath).Msg("Using Chromium binary")
		l = l.Bin(chromiumPath)
	}

	if isDockerEnvironment() {
		b.log.Debug().Msg("Container detected, applying sandbox flags")
		l = l.Set("disable-setuid-sandbox").
			Set("no-first-run").
			Set("disable-default-apps")
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, nil, err
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	cleanup := func() {
		if err := browser.Close(); err != nil {
			b.log.Debug().Err(err).Msg("Browser close")
		}
		l.Kill()
		l.Cleanup()
	}
	return browser, cleanup, nil
}

func (b *BrowserCounter) dismissOverlays(page *rod.Page) {
	for _, selector := range overlaySelectors {
		elements, err := page.Elements(selector)
		if err != nil {
			continue
		}
		for _, el := range elements {
			if visible, err := el.Visible(); err != nil || !visible {
				continue
			}
			if err := clickWithFallback(el); err == nil {
				b.log.Debug().Str("selector", selector).Msg("Dismissed overlay")
			}
		}
	}
}

func (b *BrowserCounter) applyMileageFilter(page *rod.Page, maxMileage int) error {
	p := page.Timeout(b.opts.Timeout)
	defer p.CancelTimeout()

	filter, err := p.Race().
		ElementR("button", `(?i)mileage`).
		ElementR("[role='button']", `(?i)mileage`).
		ElementR(".v-expansion-panel-header, .filter-item", `(?i)mileage`).
		ElementR("div, span", `(?i)^\s*mileage\s*$`).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFilterNotFound, err)
	}
	if err := clickWithFallback(filter); err != nil {
		return fmt.Errorf("%w: click failed: %v", ErrFilterNotFound, err)
	}

	input, err := b.maxMileageInput(p)
	if err != nil {
		return err
	}
	if err := setInputValue(input, fmt.Sprint(maxMileage)); err != nil {
		return fmt.Errorf("could not enter max mileage: %w", err)
	}

	apply, err := p.ElementR("button", `(?i)^\s*apply\s*$`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrApplyNotFound, err)
	}
	if err := clickWithFallback(apply); err != nil {
		return fmt.Errorf("%w: click failed: %v", ErrApplyNotFound, err)
	}

	b.log.Debug().Int("max_mileage", maxMileage).Msg("Mileage filter applied")
	return nil
}

// maxMileageInput picks the rightmost visible numeric input of the open
// filter panel.
func (b *BrowserCounter) maxMileageInput(page *rod.Page) (*rod.Element, error) {
	if _, err := page.Element(numericInputSelector); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaxInputNotFound, err)
	}
	elements, err := page.Elements(numericInputSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaxInputNotFound, err)
	}

	var (
		visible []*rod.Element
		boxes   []Box
	)
	for _, el := range elements {
		if ok, err := el.Visible(); err != nil || !ok {
			continue
		}
		shape, err := el.Shape()
		if err != nil || len(shape.Quads) == 0 {
			continue
		}
		box := shape.Box()
		visible = append(visible, el)
		boxes = append(boxes, Box{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height})
	}

	idx := Rightmost(boxes)
	if idx < 0 {
		return nil, ErrMaxInputNotFound
	}
	return visible[idx], nil
}

func (b *BrowserCounter) paginationLabels(page *rod.Page) ([]string, error) {
	p := page.Timeout(b.opts.Timeout)
	defer p.CancelTimeout()

	if _, err := p.Element(paginationNavSelector); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaginationNotFound, err)
	}
	// The list re-renders once the filtered results arrive.
	if err := p.WaitStable(paginationSettle); err != nil {
		b.log.Debug().Err(err).Msg("Page did not settle")
	}

	items, err := page.Elements(paginationItemSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaginationNotFound, err)
	}

	labels := make([]string, 0, len(items))
	for _, item := range items {
		if ok, err := item.Visible(); err != nil || !ok {
			continue
		}
		text, err := item.Text()
		if err != nil {
			continue
		}
		labels = append(labels, strings.TrimSpace(text))
	}
	return labels, nil
}

// clickWithFallback tries a real mouse click first and falls back to a
// scripted click when the element is covered or not interactable.
func clickWithFallback(el *rod.Element) error {
	t := el.Timeout(clickTimeout)
	err := t.Click(proto.InputMouseButtonLeft, 1)
	t.CancelTimeout()
	if err == nil {
		return nil
	}
	_, err = el.Eval(`() => this.click()`)
	return err
}

// setInputValue types the value and, if the field did not take it, sets it
// directly and fires the events the site's framework listens for.
func setInputValue(el *rod.Element, value string) error {
	if err := el.SelectAllText(); err == nil {
		if err := el.Input(value); err == nil {
			if v, err := el.Property("value"); err == nil && digits(v.String()) == value {
				return nil
			}
		}
	}

	_, err := el.Eval(`(v) => {
		const setter = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'value').set;
		setter.call(this, v);
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`, value)
	return err
}

func digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// findChromiumPath looks for a Chromium/Chrome binary, preferring the
// configured one.
func findChromiumPath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
		"/opt/google/chrome/chrome",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func isDockerEnvironment() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		return strings.Contains(string(data), "docker") || strings.Contains(string(data), "containerd")
	}
	return false
}
