package labeler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/wadmes/VLSI-LLM/internal/paths"
	"github.com/wadmes/VLSI-LLM/internal/store"
)

// Labeler runs the labeling operations over synthesis-success designs.
type Labeler struct {
	DataDir    string
	PromptType string // "instruction" or "description"
	Clients    []*Client
	Cache      *Cache
	Designs    *store.DesignRepository
	Labels     *store.LabelRepository
	Parallel   int
}

// PredictTypes asks every configured model to categorize each design and
// stores one label per (design, model). Designs whose prompt or RTL files
// are missing are skipped and logged.
func (l *Labeler) PredictTypes(ctx context.Context, rtlIDs []int) error {
	system := categorySystemPrompt(l.PromptType)

	for _, client := range l.Clients {
		var reqs []BatchRequest
		pending := make(map[string]int)
		cached := 0

		for _, id := range rtlIDs {
			if val, ok := l.Cache.Get(ctx, LabelKey(client.Name, id)); ok {
				if err := l.storeLabel(id, client.Name, val); err != nil {
					return err
				}
				cached++
				continue
			}
			prompt, verilog, err := l.readDesign(id)
			if err != nil {
				log.Printf("Design %d: %v", id, err)
				continue
			}
			reqID := fmt.Sprintf("%s-%d", client.Name, id)
			pending[reqID] = id
			reqs = append(reqs, BatchRequest{
				RequestID: reqID,
				System:    system,
				User:      categoryUserPrompt(l.PromptType, prompt, verilog),
			})
		}

		log.Printf("Model %s: predicting %d designs (%d cached)", client.Name, len(reqs), cached)
		results := client.CompleteBatch(ctx, reqs, l.Parallel)

		failed := 0
		for reqID, id := range pending {
			res, ok := results[reqID]
			if !ok || res.Err != nil {
				failed++
				if ok {
					log.Printf("Design %d: model %s: %v", id, client.Name, res.Err)
				}
				continue
			}
			label := normalizeCategory(res.Content)
			if err := l.storeLabel(id, client.Name, label); err != nil {
				return err
			}
			l.Cache.Set(ctx, LabelKey(client.Name, id), label)
		}
		log.Printf("Model %s: done, %d failed", client.Name, failed)
	}
	return ctx.Err()
}

// Inst2Desc rewrites each design's instruction into description tone and
// fills the description field of its record.
func (l *Labeler) Inst2Desc(ctx context.Context, rtlIDs []int) error {
	if len(l.Clients) == 0 {
		return fmt.Errorf("no inference model configured")
	}
	client := l.Clients[0]

	var reqs []BatchRequest
	pending := make(map[string]int)
	for _, id := range rtlIDs {
		if val, ok := l.Cache.Get(ctx, DescKey(id)); ok {
			if err := l.Designs.SetDescription(id, val); err != nil {
				return err
			}
			continue
		}
		instruction, err := os.ReadFile(paths.PromptFile(l.DataDir, id, "instruction"))
		if err != nil {
			log.Printf("Design %d: %v", id, err)
			continue
		}
		reqID := fmt.Sprintf("desc-%d", id)
		pending[reqID] = id
		reqs = append(reqs, BatchRequest{
			RequestID: reqID,
			User:      inst2descPrompt + string(instruction),
		})
	}

	log.Printf("Model %s: rewriting %d instructions", client.Name, len(reqs))
	results := client.CompleteBatch(ctx, reqs, l.Parallel)

	failed := 0
	for reqID, id := range pending {
		res, ok := results[reqID]
		if !ok || res.Err != nil {
			failed++
			continue
		}
		description := strings.TrimSpace(res.Content)
		if err := l.Designs.SetDescription(id, description); err != nil {
			return err
		}
		l.Cache.Set(ctx, DescKey(id), description)
	}
	log.Printf("Inst2desc: done, %d failed", failed)
	return ctx.Err()
}

func (l *Labeler) storeLabel(rtlID int, model, prediction string) error {
	return l.Labels.Upsert(&store.Label{RTLID: rtlID, Model: model, Prediction: prediction})
}

func (l *Labeler) readDesign(rtlID int) (prompt, verilog string, err error) {
	p, err := os.ReadFile(paths.PromptFile(l.DataDir, rtlID, l.PromptType))
	if err != nil {
		return "", "", err
	}
	v, err := os.ReadFile(paths.RTLFile(l.DataDir, rtlID))
	if err != nil {
		return "", "", err
	}
	return string(p), string(v), nil
}

// normalizeCategory strips quoting and whitespace and snaps a reply onto the
// fixed category vocabulary when it matches one, otherwise keeps the trimmed
// reply verbatim.
func normalizeCategory(reply string) string {
	trimmed := strings.Trim(strings.TrimSpace(reply), `"'.`)
	for _, cat := range Categories {
		if strings.EqualFold(trimmed, cat) {
			return cat
		}
	}
	return trimmed
}
