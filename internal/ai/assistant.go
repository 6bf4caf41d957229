package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"shophub/internal/domain"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DescriptionFallback      = "A high-quality product designed to meet your needs."
	EmptyDescriptionFallback = "A premium quality product that exceeds expectations."
	NoReviewsSummary         = "No reviews yet"
	FallbackPro              = "Customers have shared positive feedback"

	maxRecommendations = 4
)

// ReviewSummary is the digest of a product's reviews.
type ReviewSummary struct {
	Summary string   `json:"summary"`
	Pros    []string `json:"pros"`
	Cons    []string `json:"cons"`
}

// Assistant turns domain data into prompts and parses the answers.
type Assistant struct {
	completer Completer
	logger    *zap.Logger
}

func NewAssistant(completer Completer, logger *zap.Logger) *Assistant {
	return &Assistant{completer: completer, logger: logger}
}

// GenerateDescription writes marketing copy for a product.
func (a *Assistant) GenerateDescription(ctx context.Context, name, category string) string {
	var b strings.Builder
	b.WriteString("Generate a compelling, detailed product description for an e-commerce website.\n\n")
	fmt.Fprintf(&b, "Product Name: %s\n", name)
	if category != "" {
		fmt.Fprintf(&b, "Category: %s\n", category)
	}
	b.WriteString(`
Write a persuasive description that highlights features, benefits, and appeals to potential buyers. Include:
1. A catchy opening statement
2. Key features and specifications
3. Benefits to the customer
4. Use case scenarios
5. Why customers should buy this product

Keep it professional, engaging, and around 150-200 words.`)

	text, err := a.completer.Complete(ctx, Prompt{Text: b.String(), Tier: TierFast})
	if err != nil {
		a.logger.Warn("Description generation failed, using fallback", zap.Error(err), zap.String("product", name))
		return DescriptionFallback
	}
	if strings.TrimSpace(text) == "" {
		return EmptyDescriptionFallback
	}
	return text
}

// Search returns the candidates the model judges relevant to query, most
// relevant first. Without a usable answer it falls back to a substring match.
func (a *Assistant) Search(ctx context.Context, query string, candidates []*domain.ProductWithDetails) []*domain.ProductWithDetails {
	if len(candidates) == 0 {
		return []*domain.ProductWithDetails{}
	}

	lines := lo.Map(candidates, func(p *domain.ProductWithDetails, i int) string {
		return fmt.Sprintf("%d. %s - %s", i+1, p.Name, describe(p))
	})
	prompt := fmt.Sprintf(`You are a smart e-commerce search assistant. Given this search query and product list, return the indices (1-based) of the most relevant products in order of relevance.

Search Query: %q

Available Products:
%s

Return only a JSON array of indices (numbers only) for relevant products, ordered by relevance. For example: [3, 1, 5]
If no products match, return an empty array: []`, query, strings.Join(lines, "\n"))

	picked, err := a.pick(ctx, Prompt{Text: prompt, Tier: TierReasoning, JSON: true}, candidates)
	if err != nil {
		a.logger.Warn("AI search failed, using substring match", zap.Error(err), zap.String("query", query))
		return SubstringSearch(query, candidates)
	}
	return picked
}

// Recommend returns up to four candidates that go well with the named product.
// Without a usable answer it returns the first four candidates.
func (a *Assistant) Recommend(ctx context.Context, productName string, candidates []*domain.ProductWithDetails) []*domain.ProductWithDetails {
	if len(candidates) == 0 {
		return []*domain.ProductWithDetails{}
	}

	lines := lo.Map(candidates, func(p *domain.ProductWithDetails, i int) string {
		category := "Uncategorized"
		if p.Category != nil {
			category = p.Category.Name
		}
		return fmt.Sprintf("%d. %s (%s)", i+1, p.Name, category)
	})
	prompt := fmt.Sprintf(`You are a smart product recommendation engine. Given a product, recommend 3-4 complementary or similar products that customers might also like.

Current Product: %s

Available Products:
%s

Return only a JSON array of indices (1-based numbers) for recommended products. For example: [5, 2, 8, 3]`, productName, strings.Join(lines, "\n"))

	picked, err := a.pick(ctx, Prompt{Text: prompt, Tier: TierFast, JSON: true}, candidates)
	if err != nil {
		a.logger.Warn("AI recommendations failed, using first candidates", zap.Error(err), zap.String("product", productName))
		return lo.Slice(candidates, 0, maxRecommendations)
	}
	return lo.Slice(picked, 0, maxRecommendations)
}

var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"pros":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"cons":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"summary", "pros", "cons"},
}

// SummarizeReviews condenses reviews into a summary with pros and cons.
func (a *Assistant) SummarizeReviews(ctx context.Context, reviews []domain.Review) ReviewSummary {
	if len(reviews) == 0 {
		return ReviewSummary{Summary: NoReviewsSummary, Pros: []string{}, Cons: []string{}}
	}

	lines := lo.Map(reviews, func(r domain.Review, i int) string {
		comment := "No comment"
		if r.Comment != nil && *r.Comment != "" {
			comment = *r.Comment
		}
		return fmt.Sprintf("%d. Rating: %d/5 - %s", i+1, r.Rating, comment)
	})
	prompt := fmt.Sprintf(`Analyze these product reviews and provide a summary with pros and cons.

Reviews:
%s

Return a JSON object with:
{
  "summary": "A brief 2-3 sentence summary of overall customer sentiment",
  "pros": ["List of positive points mentioned"],
  "cons": ["List of negative points or concerns"]
}`, strings.Join(lines, "\n"))

	summary, err := a.summarize(ctx, Prompt{Text: prompt, Tier: TierReasoning, JSON: true, Schema: summarySchema})
	if err != nil {
		a.logger.Warn("Review summary failed, using rating template", zap.Error(err), zap.Int("reviews", len(reviews)))
		return FallbackSummary(reviews)
	}
	return summary
}

func (a *Assistant) summarize(ctx context.Context, prompt Prompt) (ReviewSummary, error) {
	text, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return ReviewSummary{}, err
	}

	var summary ReviewSummary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return ReviewSummary{}, fmt.Errorf("failed to parse review summary: %w", err)
	}
	if summary.Pros == nil {
		summary.Pros = []string{}
	}
	if summary.Cons == nil {
		summary.Cons = []string{}
	}
	return summary, nil
}

// pick asks for a JSON array of 1-based indices and maps it back onto
// candidates. Out-of-range, fractional and repeated indices are dropped.
func (a *Assistant) pick(ctx context.Context, prompt Prompt, candidates []*domain.ProductWithDetails) ([]*domain.ProductWithDetails, error) {
	text, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var indices []float64
	if err := json.Unmarshal([]byte(text), &indices); err != nil {
		return nil, fmt.Errorf("failed to parse index list: %w", err)
	}

	valid := lo.Filter(indices, func(i float64, _ int) bool {
		return i == math.Trunc(i) && i >= 1 && int(i) <= len(candidates)
	})
	return lo.Map(lo.Uniq(valid), func(i float64, _ int) *domain.ProductWithDetails {
		return candidates[int(i)-1]
	}), nil
}

// SubstringSearch keeps the candidates whose name or short description
// contains query, ignoring case, in their original order.
func SubstringSearch(query string, candidates []*domain.ProductWithDetails) []*domain.ProductWithDetails {
	needle := strings.ToLower(query)
	return lo.Filter(candidates, func(p *domain.ProductWithDetails, _ int) bool {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return true
		}
		return p.ShortDescription != nil && strings.Contains(strings.ToLower(*p.ShortDescription), needle)
	})
}

// FallbackSummary reports the review count and mean rating.
func FallbackSummary(reviews []domain.Review) ReviewSummary {
	avg, count := domain.AverageRating(lo.Map(reviews, func(r domain.Review, _ int) int { return r.Rating }))
	summary := NoReviewsSummary
	if avg != nil {
		summary = fmt.Sprintf("Based on %d reviews, customers rated this product %.1f/5 stars.", count, *avg)
	}
	return ReviewSummary{
		Summary: summary,
		Pros:    []string{FallbackPro},
		Cons:    []string{},
	}
}

func describe(p *domain.ProductWithDetails) string {
	if p.ShortDescription != nil && *p.ShortDescription != "" {
		return *p.ShortDescription
	}
	if p.LongDescription != nil && *p.LongDescription != "" {
		return *p.LongDescription
	}
	return "No description"
}
