package controller

import (
	"context"
	"strconv"
	"strings"

	"github.com/mkraus12/courtside/internal/abbrev"
	"github.com/mkraus12/courtside/internal/fieldmode"
	"github.com/mkraus12/courtside/internal/models"
)

// Edit operations. Each one mutates the snapshot synchronously and then
// persists it in full, exactly once. Name edits may additionally rewrite the
// dependent short code when that field is auto-owned.

// SetName updates a team name. While the side's short code is auto-owned it
// is re-derived from the new name in the same edit.
func (c *Controller) SetName(ctx context.Context, side models.Side, name string) error {
	c.mu.Lock()
	if side == models.Home {
		c.state.HomeName = name
	} else {
		c.state.AwayName = name
	}
	field := shortField(side)
	if c.modes.Mode(field) == fieldmode.Auto {
		c.state.SetShort(side, abbrev.Short(name))
		c.modes.Set(field, fieldmode.Auto)
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// SetShort submits a short code. Blank input clears the override: the field
// re-enters auto mode and is re-derived from the current name. Non-blank
// input is uppercased, truncated to 3 characters and takes manual ownership.
func (c *Controller) SetShort(ctx context.Context, side models.Side, raw string) error {
	raw = strings.ToUpper(raw)
	if r := []rune(raw); len(r) > 3 {
		raw = string(r[:3])
	}

	c.mu.Lock()
	field := shortField(side)
	if strings.TrimSpace(raw) == "" {
		c.state.SetShort(side, abbrev.Short(c.state.Name(side)))
		c.modes.Set(field, fieldmode.Auto)
	} else {
		c.state.SetShort(side, raw)
		c.modes.Set(field, fieldmode.Manual)
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// SetLogo updates a logo URL and, when non-empty, kicks a detached color
// sample for that side. The logo edit itself persists immediately; the
// sampled color arrives (and persists) later, if at all.
func (c *Controller) SetLogo(ctx context.Context, side models.Side, url string) error {
	c.mu.Lock()
	if side == models.Home {
		c.state.HomeLogo = url
	} else {
		c.state.AwayLogo = url
	}
	gen := c.generation
	c.mu.Unlock()

	if url != "" {
		c.sampleDetached(ctx, gen, side, url)
	}
	return c.persist(ctx)
}

// SetBrandColor sets a brand color explicitly (primary for home, secondary
// for away).
func (c *Controller) SetBrandColor(ctx context.Context, side models.Side, hex string) error {
	c.mu.Lock()
	c.state.SetBrandColor(side, hex)
	c.mu.Unlock()
	return c.persist(ctx)
}

// SetTheme switches the overlay theme tag.
func (c *Controller) SetTheme(ctx context.Context, theme string) error {
	c.mu.Lock()
	c.state.Theme = theme
	c.mu.Unlock()
	return c.persist(ctx)
}

// SetHalfLength parses a half length in minutes. Invalid or non-positive
// input is not assigned; the previous value is retained and the snapshot is
// still persisted, matching the per-edit save contract.
func (c *Controller) SetHalfLength(ctx context.Context, raw string) error {
	c.mu.Lock()
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
		c.state.HalfLength = n
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// SetQREvery sets the QR display cadence in minutes. Defensive like
// SetHalfLength.
func (c *Controller) SetQREvery(ctx context.Context, raw string) error {
	c.mu.Lock()
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
		c.state.QREvery = n
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// SetQRDuration sets how long the QR stays visible, in seconds.
func (c *Controller) SetQRDuration(ctx context.Context, raw string) error {
	c.mu.Lock()
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
		c.state.QRDuration = n
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// AddGoal increments a side's score.
func (c *Controller) AddGoal(ctx context.Context, side models.Side) error {
	c.mu.Lock()
	if side == models.Home {
		c.state.HomeScore++
	} else {
		c.state.AwayScore++
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// RemoveGoal decrements a side's score, floored at zero.
func (c *Controller) RemoveGoal(ctx context.Context, side models.Side) error {
	c.mu.Lock()
	if side == models.Home && c.state.HomeScore > 0 {
		c.state.HomeScore--
	}
	if side == models.Away && c.state.AwayScore > 0 {
		c.state.AwayScore--
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// ResetScores zeroes both scores.
func (c *Controller) ResetScores(ctx context.Context) error {
	c.mu.Lock()
	c.state.HomeScore = 0
	c.state.AwayScore = 0
	c.mu.Unlock()
	return c.persist(ctx)
}

// AddFoul increments a side's foul count, capped at models.MaxFouls.
func (c *Controller) AddFoul(ctx context.Context, side models.Side) error {
	c.mu.Lock()
	if side == models.Home && c.state.HomeFouls < models.MaxFouls {
		c.state.HomeFouls++
	}
	if side == models.Away && c.state.AwayFouls < models.MaxFouls {
		c.state.AwayFouls++
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// RemoveFoul decrements a side's foul count, floored at zero.
func (c *Controller) RemoveFoul(ctx context.Context, side models.Side) error {
	c.mu.Lock()
	if side == models.Home && c.state.HomeFouls > 0 {
		c.state.HomeFouls--
	}
	if side == models.Away && c.state.AwayFouls > 0 {
		c.state.AwayFouls--
	}
	c.mu.Unlock()
	return c.persist(ctx)
}
