// Package proxy validates and rotates browser proxies. Each worker session
// is launched with the next proxy in round-robin order.
package proxy

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// Supplier hands out validated proxy URLs in round-robin order. An empty
// pool yields empty strings, meaning direct connections.
type Supplier struct {
	mu      sync.Mutex
	proxies []string
	next    int
}

// NewSupplier health-checks the configured proxies in parallel against the
// test URL and keeps only the working ones.
func NewSupplier(ctx context.Context, proxies []string, testURL string) *Supplier {
	if len(proxies) == 0 {
		return &Supplier{}
	}

	log.Infof("testing %d proxies in parallel", len(proxies))

	var mu sync.Mutex
	var valid []string
	var wg sync.WaitGroup
	sem := make(chan struct{}, 50)

	for _, proxyURL := range proxies {
		wg.Add(1)
		go func(proxyURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if checkProxy(ctx, proxyURL, testURL) {
				mu.Lock()
				valid = append(valid, proxyURL)
				mu.Unlock()
				log.Infof("proxy %s is working", proxyURL)
			} else {
				log.Infof("proxy %s is not working, skipping", proxyURL)
			}
		}(proxyURL)
	}
	wg.Wait()

	log.Infof("proxy supplier initialized with %d working proxies out of %d tested", len(valid), len(proxies))
	return &Supplier{proxies: valid}
}

// Get returns the next proxy URL, or empty when none are available.
func (s *Supplier) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.proxies) == 0 {
		return ""
	}
	p := s.proxies[s.next]
	s.next = (s.next + 1) % len(s.proxies)
	return p
}

func checkProxy(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	resp, err := client.R().SetContext(ctx).Get(testURL)
	if err != nil {
		log.Debugf("proxy test failed for %s: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Debugf("proxy test failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}
	return true
}
