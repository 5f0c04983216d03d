// internal/hw/modbus/runner.go
package modbus

import (
	"context"
	"time"

	"github.com/tamzrod/camera-adapter/internal/hw"
)

// Run delivers events until ctx is done.
// One poll loop per port. No overlap. No retries: a failed poll is
// recorded in link health and the next tick tries again.
func (p *Port) Run(ctx context.Context) error {
	go p.d.Run(ctx)

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if err := p.PollOnce(); err != nil {
				p.log.Debug("event poll failed", "err", err)
			}

		case <-secTicker.C:
			// Tick 1 Hz while not OK.
			p.health.Tick()
		}
	}
}

// PollOnce reads the event block [sequence, changed index] and publishes
// a "setting changed" event when the sequence moved.
// The first successful read only latches the sequence.
func (p *Port) PollOnce() error {
	pl, err := p.readRegisters(p.eventBlock, 2)
	if err != nil {
		return err
	}

	seq, idx := pl.Word(0), hw.Index(pl.Word(1))

	if !p.seqSeen {
		p.seqSeen = true
		p.lastSeq = seq
		return nil
	}
	if seq == p.lastSeq {
		return nil
	}
	p.lastSeq = seq

	if err := p.d.Publish(hw.Event{Kind: hw.EventSettingChanged, Index: idx}); err != nil {
		p.log.Warn("event dropped", "index", idx, "seq", seq, "err", err)
		return err
	}
	p.log.Debug("setting changed", "index", idx, "seq", seq)
	return nil
}
