package services

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/repositories"
)

const newsletterWorkers = 5

type SendResult struct {
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
}

type NewsletterService struct {
	repo    repositories.NewsletterRepository
	mailer  EmailSender
	workers int
}

func NewNewsletterService(repo repositories.NewsletterRepository, mailer EmailSender) *NewsletterService {
	return &NewsletterService{repo: repo, mailer: mailer, workers: newsletterWorkers}
}

func parseEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Address != strings.TrimSpace(raw) {
		return "", fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	return strings.ToLower(addr.Address), nil
}

// Subscribe reports whether the address is new. Subscribing twice is not an error.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (bool, error) {
	addr, err := parseEmail(email)
	if err != nil {
		return false, err
	}
	created, err := s.repo.Subscribe(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("failed to subscribe: %w", err)
	}
	return created, nil
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	addr, err := parseEmail(email)
	if err != nil {
		return err
	}
	return s.repo.Unsubscribe(ctx, addr)
}

func (s *NewsletterService) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	return s.repo.List(ctx)
}

func (s *NewsletterService) Clear(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}

// Send mails subject/html to every subscriber with a bounded pool of workers.
// Stopping early on ctx leaves the remaining addresses uncounted.
func (s *NewsletterService) Send(ctx context.Context, subject, html string) (*SendResult, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("%w: subject and html are required", ErrInvalidInput)
	}

	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}

	var (
		res  SendResult
		wg   sync.WaitGroup
		jobs = make(chan string)
	)
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for to := range jobs {
				if err := s.mailer.SendHTMLEmail(to, subject, html); err != nil {
					log.Printf("NewsletterService.Send: %s: %v", to, err)
					atomic.AddInt64(&res.Failed, 1)
					continue
				}
				atomic.AddInt64(&res.Sent, 1)
			}
		}()
	}

feed:
	for _, sub := range subs {
		select {
		case jobs <- sub.Email:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	log.Printf("NewsletterService.Send: %q sent=%d failed=%d", subject, res.Sent, res.Failed)
	return &res, nil
}
