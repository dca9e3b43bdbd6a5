package detector

import (
	"sync/atomic"

	"github.com/yaklabco/gocharset/pkg/runner"
	"github.com/yaklabco/gocharset/pkg/sniff"
)

// pool hands every worker its own Sniffer, built on first use and reset
// when the worker exits.
type pool struct {
	local   *runner.Local[*sniff.Sniffer]
	created atomic.Int64
}

func newPool(opts sniff.Options) *pool {
	p := &pool{}
	p.local = runner.NewLocal(
		func() *sniff.Sniffer {
			p.created.Add(1)
			return sniff.New(opts)
		},
		(*sniff.Sniffer).Reset,
	)
	return p
}

// forWorker returns w's sniffer.
func (p *pool) forWorker(w *runner.Worker) *sniff.Sniffer {
	return p.local.Get(w)
}

// Created returns how many sniffers were constructed so far.
func (p *pool) Created() int64 {
	return p.created.Load()
}
