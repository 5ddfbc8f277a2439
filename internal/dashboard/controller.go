package dashboard

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sodam/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

var log = logrus.WithField("prefix", "dashboard")

// Controller runs the dashboard's button flows against the scoring API.
//
// The page lock is held only while reading inputs and while rendering, never
// across the network call. Two flows can therefore be in flight at once and
// whichever response arrives last wins its region.
type Controller struct {
	api  domain.RecsAPI
	mu   sync.Mutex
	page *Page
}

// NewController creates a controller over a page
func NewController(api domain.RecsAPI, page *Page) *Controller {
	return &Controller{api: api, page: page}
}

// ClickScore collects the inputs, scores them and renders the result.
// On failure the page is left as it was.
func (c *Controller) ClickScore(ctx context.Context) error {
	c.mu.Lock()
	features := CollectFeatures(c.page)
	c.mu.Unlock()

	res, err := c.api.Score(ctx, features)
	if err != nil {
		log.WithError(err).Warn("score request failed")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := RenderScore(c.page, res); err != nil {
		log.WithError(err).Warn("score render failed")
		return err
	}
	return nil
}

// ClickSample fetches the sample areas and renders the table
func (c *Controller) ClickSample(ctx context.Context) error {
	res, err := c.api.Sample(ctx)
	if err != nil {
		log.WithError(err).Warn("sample request failed")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := RenderSample(c.page, res); err != nil {
		log.WithError(err).Warn("sample render failed")
		return err
	}
	return nil
}

// Refresh runs both flows concurrently. A failure in one does not cancel the other.
func (c *Controller) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.ClickScore(ctx) })
	g.Go(func() error { return c.ClickSample(ctx) })
	return g.Wait()
}

// View runs fn with exclusive access to the page
func (c *Controller) View(fn func(*Page) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.page)
}

// Render writes the current page
func (c *Controller) Render(w io.Writer) error {
	return c.View(func(p *Page) error { return p.Render(w) })
}
