// Package controller is the reconciliation engine behind the operator
// console. It mirrors the server snapshot, fills missing short codes and
// brand colors, and pushes every local edit back to the server.
package controller

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mkraus12/courtside/internal/abbrev"
	"github.com/mkraus12/courtside/internal/api"
	"github.com/mkraus12/courtside/internal/fieldmode"
	"github.com/mkraus12/courtside/internal/models"
)

// Transport is what the engine needs from the server connection. The api
// package provides the production implementation.
type Transport interface {
	GetState(ctx context.Context) (models.Scoreboard, error)
	UpdateState(ctx context.Context, state models.Scoreboard) error
	Timer(ctx context.Context, action api.TimerAction) error
	SwapSides(ctx context.Context) error
	LoadSlot(ctx context.Context, filename string) error
	Import(ctx context.Context, filename string, r io.Reader) error
}

// Sampler derives a brand color from a logo URL. Failure is always the soft
// colorsample.ErrUnavailable, never a hard error for the engine.
type Sampler interface {
	Dominant(ctx context.Context, url string) (string, error)
}

const (
	fieldHomeShort = "homeShort"
	fieldAwayShort = "awayShort"
)

func shortField(side models.Side) string {
	if side == models.Home {
		return fieldHomeShort
	}
	return fieldAwayShort
}

// Controller owns the client-side snapshot. All mutations happen under one
// mutex, synchronously, before any network call is issued; detached work
// (color sampling) re-checks the reload generation before applying results.
type Controller struct {
	transport Transport
	sampler   Sampler

	mu         sync.Mutex
	state      models.Scoreboard
	modes      *fieldmode.Tracker
	generation uint64

	instanceID string
	sampling   sync.WaitGroup
}

// New creates a Controller. The snapshot is empty until Load is called.
func New(transport Transport, sampler Sampler) *Controller {
	return &Controller{
		transport:  transport,
		sampler:    sampler,
		modes:      fieldmode.NewTracker(),
		instanceID: uuid.New().String()[:8],
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() models.Scoreboard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode reports who owns a side's short code right now.
func (c *Controller) Mode(side models.Side) fieldmode.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modes.Mode(shortField(side))
}

// Wait blocks until detached color-sampling work has settled. The CLI calls
// it before exiting so fire-and-forget saves are not cut off mid-flight.
func (c *Controller) Wait() {
	c.sampling.Wait()
}

// Load runs the load flow: fetch the snapshot, resolve legacy aliases and
// clamps, derive any blank short code (marking it auto), persist once if
// anything was derived, then kick off color derivation for sides that have
// a logo but no brand color. Re-running Load supersedes all earlier
// detached work: stale sampling results are dropped by generation.
func (c *Controller) Load(ctx context.Context) error {
	state, err := c.transport.GetState(ctx)
	if err != nil {
		return err
	}
	state.ResolveLegacy()
	state.Clamp()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.modes.Reset()
	derived := false
	for _, side := range []models.Side{models.Home, models.Away} {
		field := shortField(side)
		if strings.TrimSpace(state.Short(side)) == "" {
			state.SetShort(side, abbrev.Short(state.Name(side)))
			c.modes.Set(field, fieldmode.Auto)
			derived = true
		} else {
			c.modes.Set(field, fieldmode.Manual)
		}
	}
	c.state = state
	snapshot := state
	c.mu.Unlock()

	if derived {
		// Close the gap on the server permanently. Shorts are persisted
		// before the color step is evaluated.
		if err := c.transport.UpdateState(ctx, snapshot); err != nil {
			log.Warn().Err(err).Str("controller", c.instanceID).Msg("failed to persist derived short codes")
		}
	}

	for _, side := range []models.Side{models.Home, models.Away} {
		if snapshot.BrandColor(side) == "" && snapshot.Logo(side) != "" {
			c.sampleDetached(ctx, gen, side, snapshot.Logo(side))
		}
	}
	return nil
}

// sampleDetached runs one color sample off the calling flow. The result is
// applied and persisted only if no full reload happened in the meantime;
// unavailability leaves the color unset and persists nothing.
func (c *Controller) sampleDetached(ctx context.Context, gen uint64, side models.Side, url string) {
	c.sampling.Add(1)
	go func() {
		defer c.sampling.Done()
		hex, err := c.sampler.Dominant(ctx, url)
		if err != nil {
			log.Debug().Str("controller", c.instanceID).Str("side", string(side)).Str("url", url).Msg("color sample unavailable")
			return
		}

		c.mu.Lock()
		if c.generation != gen {
			c.mu.Unlock()
			log.Debug().Str("controller", c.instanceID).Str("side", string(side)).Msg("dropping stale color sample")
			return
		}
		c.state.SetBrandColor(side, hex)
		snapshot := c.state
		c.mu.Unlock()

		if err := c.transport.UpdateState(ctx, snapshot); err != nil {
			// Fire-and-forget: a failed auto-color save is logged, never
			// surfaced to the operator.
			log.Warn().Err(err).Str("controller", c.instanceID).Msg("failed to persist derived color")
		}
	}()
}

// persist pushes the whole current snapshot. Every edit calls this exactly
// once, unconditionally; there is no batching or debounce.
func (c *Controller) persist(ctx context.Context) error {
	c.mu.Lock()
	snapshot := c.state
	c.mu.Unlock()
	return c.transport.UpdateState(ctx, snapshot)
}

// Swap flips the displayed sides on the server and replaces the local
// snapshot by re-running the load flow. No incremental merge.
func (c *Controller) Swap(ctx context.Context) error {
	if err := c.transport.SwapSides(ctx); err != nil {
		return err
	}
	return c.Load(ctx)
}

// SecondHalf starts the second half on the server and reloads.
func (c *Controller) SecondHalf(ctx context.Context) error {
	if err := c.transport.Timer(ctx, api.TimerSecondHalf); err != nil {
		return err
	}
	return c.Load(ctx)
}

// LoadSlot replaces the server state from a named slot and reloads.
func (c *Controller) LoadSlot(ctx context.Context, filename string) error {
	if err := c.transport.LoadSlot(ctx, filename); err != nil {
		return err
	}
	return c.Load(ctx)
}

// ImportFile uploads a snapshot file and reloads. On upload failure the
// local snapshot is left untouched.
func (c *Controller) ImportFile(ctx context.Context, filename string, r io.Reader) error {
	if err := c.transport.Import(ctx, filename, r); err != nil {
		return err
	}
	return c.Load(ctx)
}
