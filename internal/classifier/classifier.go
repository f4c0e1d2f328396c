package classifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

// minClassifiableLength is the shortest content worth sending to the
// model. Below this the answer would be a guess about the name alone.
const minClassifiableLength = 20

// CompletionClient is the API surface the classifier needs. Satisfied by
// *Client and by test doubles.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier decides whether extracted content describes an insurance
// organization.
type Classifier struct {
	client CompletionClient
	log    logger.Interface
}

// New creates a Classifier backed by the given completion client.
func New(client CompletionClient, log logger.Interface) *Classifier {
	return &Classifier{client: client, log: log.WithComponent("classifier")}
}

// Classify returns the insurance verdict for an organization's content.
// A nil verdict with a nil error means the content was too thin to
// classify. Errors wrapping ErrFatalConfig must abort the whole run;
// other errors fail only this organization.
func (c *Classifier) Classify(ctx context.Context, orgName, content string) (*bool, error) {
	log := c.log.WithOrganization(orgName)

	if chars := utf8.RuneCountInString(strings.TrimSpace(content)); chars < minClassifiableLength {
		log.Warn("Content too short to classify", "chars", chars)
		return nil, nil
	}

	answer, err := c.client.Complete(ctx, BuildPrompt(orgName, content))
	if err != nil {
		return nil, fmt.Errorf("classifying %s: %w", orgName, err)
	}

	verdict := ParseAnswer(answer)
	if verdict == nil {
		return nil, fmt.Errorf("answer %q: %w", answer, domain.ErrUnparseableAnswer)
	}

	if kw := KeywordVerdict(content); kw != nil && *kw != *verdict {
		log.Warn("Keyword signal disagrees with model verdict",
			"model", *verdict, "keywords", *kw)
	}

	log.Info("Classified", "is_insurance", *verdict)
	return verdict, nil
}
