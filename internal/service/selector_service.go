package service

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/repository"
)

// SelectorService picks the next product to post about on a platform.
// Products with fewer successful posts on that platform come first;
// ties are broken at random so no product is deterministically starved
// and the posting order is not an obvious pattern.
type SelectorService interface {
	SelectNext(ctx context.Context, platform string, excludeIDs []string) (*models.Product, error)
}

type selectorService struct {
	pr         repository.ProductRepository
	lr         repository.PostRecordRepository
	workerName string
	claimTTL   time.Duration
	rnd        *rand.Rand
}

func NewSelectorService(
	pr repository.ProductRepository,
	lr repository.PostRecordRepository,
	workerName string,
	claimTTL time.Duration,
	rnd *rand.Rand) SelectorService {
	return &selectorService{
		pr:         pr,
		lr:         lr,
		workerName: workerName,
		claimTTL:   claimTTL,
		rnd:        rnd,
	}
}

// SelectNext returns (nil, nil) when no eligible product exists or every
// candidate is claimed by another worker; the caller backs off and retries.
// Database errors propagate unretried, retry policy belongs to the caller.
func (s *selectorService) SelectNext(ctx context.Context, platform string, excludeIDs []string) (*models.Product, error) {
	products, err := s.pr.ListEligible(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.lr.SuccessCounts(ctx, platform)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	candidates := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if !excluded[p.ID] {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Shuffle first, then stable-sort by count: candidates with equal
	// counts end up in random order.
	s.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return counts[candidates[i].ID] < counts[candidates[j].ID]
	})

	for _, p := range candidates {
		claimed, err := s.pr.Claim(ctx, p.ID, s.workerName, time.Now(), s.claimTTL)
		if err != nil {
			return nil, err
		}
		if claimed {
			return p, nil
		}
	}
	return nil, nil
}
