package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/angler-ua/deviceconf/internal/bus"
	"github.com/angler-ua/deviceconf/internal/config"
	"github.com/angler-ua/deviceconf/internal/header"
	"github.com/angler-ua/deviceconf/internal/transmission"
)

// Options selects which sinks receive config snapshots in watch mode.
type Options struct {
	RenderTo string                   // header path kept in sync with the config file; empty disables rendering
	Tx       transmission.Transmitter // config distribution; nil disables it
}

// Run wires the config file watcher to the configured sinks and blocks
// until ctx is cancelled. Every validated change flows holder -> bus ->
// sinks; an invalid change never reaches a sink because the holder refuses
// to swap it in.
func Run(parentCtx context.Context, holder *config.Holder, messageBus *bus.Bus, opts Options, logger *logrus.Logger) error {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	grp, ctx := errgroup.WithContext(ctx)

	sub := messageBus.Subscribe()

	// Apply the initial snapshot before watching so the header and broker
	// reflect the file as it was at startup.
	if err := apply(holder.Get(), opts, logger); err != nil {
		return err
	}

	if err := holder.StartWatcher(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	grp.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case snap, ok := <-sub:
				if !ok {
					return nil
				}
				if err := apply(snap, opts, logger); err != nil {
					// Sink failures are transient (broker hiccup, busy
					// header file); the next change retries.
					logger.WithError(err).Warn("Failed to apply config snapshot")
				}
			}
		}
	})

	if err := grp.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// apply pushes one snapshot into every configured sink.
func apply(cfg *config.Config, opts Options, logger *logrus.Logger) error {
	if opts.RenderTo != "" {
		if err := header.WriteFile(opts.RenderTo, cfg); err != nil {
			return err
		}
		logger.WithField("path", opts.RenderTo).Info("Rendered device header")
	}
	if opts.Tx != nil {
		if err := opts.Tx.Transmit(cfg); err != nil {
			return err
		}
	}
	return nil
}
