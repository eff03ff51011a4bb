package advisor

import (
	"context"
	"errors"
)

// Chain tries each advisor in order and returns the first valid advice.
// Context cancellation stops the chain immediately.
type Chain []Advisor

// Fallback builds a chain, skipping nil entries.
func Fallback(advisors ...Advisor) Chain {
	c := make(Chain, 0, len(advisors))
	for _, a := range advisors {
		if a != nil {
			c = append(c, a)
		}
	}
	return c
}

func (c Chain) Advise(ctx context.Context, req Request) (Advice, error) {
	if len(c) == 0 {
		return Advice{}, ErrNoAdvisor
	}

	var errs []error
	for _, a := range c {
		adv, err := a.Advise(ctx, req)
		if err == nil {
			if err = adv.Validate(); err == nil {
				return adv, nil
			}
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return Advice{}, errors.Join(errs...)
}
