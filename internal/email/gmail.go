package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"fixture-matching/internal/config"
)

// GmailClient implements EmailClient using the Gmail API
type GmailClient struct {
	service *gmail.Service
	config  *config.GmailConfig
	search  *config.SearchConfig
}

// NewGmailClient creates a new Gmail API client using OAuth2
func NewGmailClient(cfg *config.GmailConfig, searchCfg *config.SearchConfig) (*GmailClient, error) {
	ctx := context.Background()

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
		AccessToken:  cfg.AccessToken,
	}

	tokenSource := oauth2Config.TokenSource(ctx, token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailClient{
		service: service,
		config:  cfg,
		search:  searchCfg,
	}, nil
}

// Search retrieves emails matching the given query
func (g *GmailClient) Search(ctx context.Context, query string) ([]EmailMessage, error) {
	log.Printf("INFO: Searching Gmail with query: %s", query)

	call := g.service.Users.Messages.List("me").Q(query)
	if g.config.MaxResults > 0 {
		call = call.MaxResults(g.config.MaxResults)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Gmail search failed: %w", err)
	}

	if len(response.Messages) == 0 {
		log.Printf("INFO: No messages found for query")
		return []EmailMessage{}, nil
	}

	log.Printf("INFO: Found %d messages, fetching details", len(response.Messages))

	var emails []EmailMessage
	for i, msg := range response.Messages {
		// Rate limiting between requests
		if i > 0 && g.config.RateLimitDelay > 0 {
			time.Sleep(g.config.RateLimitDelay)
		}

		email, err := g.GetMessage(ctx, msg.Id)
		if err != nil {
			log.Printf("WARN: Failed to get message %s: %v", msg.Id, err)
			continue
		}

		emails = append(emails, *email)
	}

	log.Printf("INFO: Successfully retrieved %d emails", len(emails))
	return emails, nil
}

// GetMessage retrieves a specific email by ID
func (g *GmailClient) GetMessage(ctx context.Context, id string) (*EmailMessage, error) {
	message, err := g.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return g.parseGmailMessage(message)
}

// HealthCheck verifies the Gmail connection is working
func (g *GmailClient) HealthCheck(ctx context.Context) error {
	_, err := g.service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Gmail health check failed: %w", err)
	}
	return nil
}

// Close cleans up the client resources
func (g *GmailClient) Close() error {
	// Gmail API client doesn't require explicit cleanup
	return nil
}

// parseGmailMessage converts a Gmail API message to our EmailMessage format
func (g *GmailClient) parseGmailMessage(message *gmail.Message) (*EmailMessage, error) {
	email := &EmailMessage{
		ID:       message.Id,
		ThreadID: message.ThreadId,
		Headers:  make(map[string]string),
		Labels:   message.LabelIds,
	}

	// Extract headers
	for _, header := range message.Payload.Headers {
		email.Headers[header.Name] = header.Value

		switch strings.ToLower(header.Name) {
		case "from":
			email.From = header.Value
		case "subject":
			email.Subject = header.Value
		case "date":
			if date, err := mail.ParseDate(header.Value); err == nil {
				email.Date = date
			}
		}
	}

	// Extract body content
	plainText, htmlText := g.extractContent(message.Payload)
	email.PlainText = plainText
	email.HTMLText = htmlText

	return email, nil
}

// extractContent recursively extracts text content from message parts
func (g *GmailClient) extractContent(part *gmail.MessagePart) (plainText, htmlText string) {
	if part.Body != nil && part.Body.Data != "" {
		content, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err == nil {
			switch part.MimeType {
			case "text/plain":
				plainText = string(content)
			case "text/html":
				htmlText = string(content)
			}
		}
	}

	// Process multipart messages
	for _, subPart := range part.Parts {
		subPlain, subHTML := g.extractContent(subPart)
		if subPlain != "" && plainText == "" {
			plainText = subPlain
		}
		if subHTML != "" && htmlText == "" {
			htmlText = subHTML
		}
	}

	// Fall back to stripped HTML when no plain-text part exists
	if plainText == "" && htmlText != "" {
		plainText = htmlToText(htmlText)
	}

	return plainText, htmlText
}

// htmlToText performs basic HTML to text conversion
func htmlToText(html string) string {
	// Remove script and style blocks entirely
	scriptRe := regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	text := scriptRe.ReplaceAllString(html, "")

	// Replace common block elements with newlines
	blockRe := regexp.MustCompile(`(?i)</?(div|p|br|tr|table)[^>]*>`)
	text = blockRe.ReplaceAllString(text, "\n")

	// Strip remaining tags
	tagRe := regexp.MustCompile(`<[^>]*>`)
	text = tagRe.ReplaceAllString(text, "")

	// Decode common entities
	replacements := map[string]string{
		"&amp;":  "&",
		"&lt;":   "<",
		"&gt;":   ">",
		"&quot;": "\"",
		"&#39;":  "'",
		"&nbsp;": " ",
	}
	for entity, replacement := range replacements {
		text = strings.ReplaceAll(text, entity, replacement)
	}

	// Collapse whitespace
	spaceRe := regexp.MustCompile(`[ \t]+`)
	text = spaceRe.ReplaceAllString(text, " ")
	lineRe := regexp.MustCompile(`\n\s*\n+`)
	text = lineRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// BuildSearchQuery constructs the Gmail search query from the search configuration
func (g *GmailClient) BuildSearchQuery() string {
	if g.search != nil && g.search.Query != "" {
		return g.search.Query
	}

	var parts []string

	// Subject terms that indicate chartering traffic
	parts = append(parts, `subject:(cargo OR vessel OR fixture OR laycan OR "open position" OR tonnage)`)

	if g.search != nil {
		if g.search.AfterDays > 0 {
			after := time.Now().AddDate(0, 0, -g.search.AfterDays)
			parts = append(parts, fmt.Sprintf("after:%s", after.Format("2006/01/02")))
		}

		if g.search.UnreadOnly {
			parts = append(parts, "is:unread")
		}

		for _, label := range g.search.IncludeLabels {
			parts = append(parts, fmt.Sprintf("label:%s", label))
		}

		for _, label := range g.search.ExcludeLabels {
			parts = append(parts, fmt.Sprintf("-label:%s", label))
		}
	}

	return strings.Join(parts, " ")
}
