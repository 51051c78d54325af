package prober

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	maxConcurrent  = 10
	requestTimeout = 5 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// defaultMirrors is the candidate list probed for DOI lookups.
var defaultMirrors = []string{
	"sci-hub.se",
	"sci-hub.st",
	"sci-hub.ru",
	"sci-hub.ren",
	"sci-hub.shop",
	"sci-hub.wf",
	"sci-hub.ee",
	"sci-hub.do",
	"sci-hub.al",
	"sci-hub.mk",
	"sci-hub.box",
	"sci-hub.in",
	"sci-hub.cat",
}

// indicators mark a probe response as a real mirror rather than a parked
// domain.
var indicators = []string{"sci-hub", "scihub", "research papers", "download"}

// Prober checks mirror availability with bounded concurrency.
type Prober struct {
	client  *http.Client
	mirrors []string
}

func New() *Prober {
	return &Prober{
		client:  &http.Client{Timeout: requestTimeout},
		mirrors: defaultMirrors,
	}
}

// FindAvailable probes every mirror concurrently, at most maxConcurrent in
// flight, and returns up to limit available base URLs in probe-completion
// order.
func (p *Prober) FindAvailable(ctx context.Context, limit int) []string {
	if limit <= 0 {
		limit = 1
	}

	sem := semaphore.NewWeighted(maxConcurrent)
	found := make(chan string, len(p.mirrors))

	var wg sync.WaitGroup
	for _, domain := range p.mirrors {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(domain string) {
			defer wg.Done()
			defer sem.Release(1)
			if url, ok := p.probe(ctx, domain); ok {
				found <- url
			}
		}(domain)
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	var available []string
	for url := range found {
		available = append(available, url)
		if len(available) >= limit {
			break
		}
	}

	if len(available) == 0 {
		log.Printf("Prober: no available mirrors found")
	} else {
		log.Printf("Prober: found %d available mirrors", len(available))
	}
	return available
}

// ResolveDOI returns the lookup URL for a DOI on the first available mirror.
func (p *Prober) ResolveDOI(ctx context.Context, doi string) (string, error) {
	urls := p.FindAvailable(ctx, 1)
	if len(urls) == 0 {
		return "", errors.New("no available mirror found")
	}
	return fmt.Sprintf("%s/%s", urls[0], doi), nil
}

// probe fetches one mirror and checks the body for indicator strings.
func (p *Prober) probe(ctx context.Context, domain string) (string, bool) {
	url := domain
	if !strings.Contains(domain, "://") {
		url = "https://" + domain
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("Prober: %s unreachable: %v", url, err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", false
	}

	html := strings.ToLower(string(body))
	for _, ind := range indicators {
		if strings.Contains(html, ind) {
			log.Printf("Prober: %s available", url)
			return url, true
		}
	}
	return "", false
}
