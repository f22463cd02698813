package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/penalty"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultMaxPromptTokens bounds the documents placed in one prompt.
const DefaultMaxPromptTokens = 200_000

// maxResults caps how many search results feed a prompt.
const maxResults = 50

// Ensure Asker implements penalty.Asker at compile time.
var _ penalty.Asker = (*Asker)(nil)

// Asker implements penalty.Asker using Google Gemini.
type Asker struct {
	client *genai.Client
	search penalty.SearchService

	// Model names the Gemini model to call.
	Model string

	// Tokens, if set, is used to keep the prompt under MaxPromptTokens.
	Tokens          penalty.TokenCounter
	MaxPromptTokens int
}

// NewAsker creates a new Asker.
func NewAsker(client *genai.Client, search penalty.SearchService) *Asker {
	return &Asker{
		client:          client,
		search:          search,
		Model:           DefaultModel,
		MaxPromptTokens: DefaultMaxPromptTokens,
	}
}

// Ask answers a natural language question from the documents of the records
// selected by query.
func (a *Asker) Ask(ctx context.Context, query penalty.SearchQuery, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", penalty.Errorf(penalty.EINVALID, "question required")
	}

	query.Offset = 0
	if query.Limit <= 0 || query.Limit > maxResults {
		query.Limit = maxResults
	}
	results, _, err := a.search.Search(ctx, query)
	if err != nil {
		return "", err
	}

	sources, err := a.selectSources(ctx, results)
	if err != nil {
		return "", err
	}
	if len(sources) == 0 {
		return "", penalty.Errorf(penalty.ENOTFOUND, "no documents with text match the search")
	}

	prompt := BuildUserPrompt(sources, question)
	config := BuildConfig()

	result, err := a.client.Models.GenerateContent(ctx, a.Model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", penalty.Errorf(penalty.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// Source is one document offered to the model, with the records it covers.
type Source struct {
	Document *penalty.Document
	Records  []*penalty.Record
}

// selectSources gathers the distinct documents with text in result order,
// stopping before the token budget is exceeded.
func (a *Asker) selectSources(ctx context.Context, results []*penalty.SearchResult) ([]Source, error) {
	index := make(map[string]int)
	var sources []Source
	var used int

	for _, res := range results {
		for _, doc := range res.Documents {
			if i, ok := index[doc.URL]; ok {
				sources[i].Records = append(sources[i].Records, res.Record)
				continue
			}
			if !doc.HasText() {
				continue
			}

			if a.Tokens != nil && a.MaxPromptTokens > 0 {
				n, err := a.Tokens.CountTokens(ctx, *doc.Text)
				if err != nil {
					return nil, err
				}
				if used+n > a.MaxPromptTokens {
					continue
				}
				used += n
			}

			index[doc.URL] = len(sources)
			sources = append(sources, Source{Document: doc, Records: []*penalty.Record{res.Record}})
		}
	}
	return sources, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a helpful assistant answering questions about OFAC civil penalty and enforcement actions. Answer based only on the documents provided and cite the source URL of each fact. If the answer is not in the documents, say so.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt builds the user prompt containing the documents and question.
func BuildUserPrompt(sources []Source, question string) string {
	var sb strings.Builder
	sb.WriteString("<documents>\n")
	for i, src := range sources {
		sb.WriteString("<document>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", i+1)
		fmt.Fprintf(&sb, "<source>%s</source>\n", src.Document.URL)
		for _, r := range src.Records {
			fmt.Fprintf(&sb, "<action date=%q penalties=\"%d\" amount_usd=\"%.2f\">%s</action>\n",
				r.Date.Format("2006-01-02"), r.PenaltyCount, r.TotalAmountUSD, r.Name)
		}
		fmt.Fprintf(&sb, "<content>%s</content>\n", src.Document.TextOrEmpty())
		sb.WriteString("</document>\n")
	}
	sb.WriteString("</documents>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
