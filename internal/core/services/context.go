package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/threadrag/internal/core/domain"
)

// NoInformationContext is the context produced when nothing was retrieved.
const NoInformationContext = "No relevant information found."

// AssembleContext joins retrieved documents under numbered headings, in the
// order received, and collects their reference links. Links are not
// de-duplicated; results without a link contribute none.
func AssembleContext(results []domain.RetrievalResult) domain.Context {
	if len(results) == 0 {
		return domain.Context{
			Text:  NoInformationContext,
			Links: []string{},
			Empty: true,
		}
	}

	sections := make([]string, len(results))
	links := make([]string, 0, len(results))
	for i := range results {
		sections[i] = fmt.Sprintf("Document %d:\n%s", i+1, results[i].Document)
		if url := results[i].URL(); url != "" {
			links = append(links, url)
		}
	}

	return domain.Context{
		Text:  strings.Join(sections, "\n\n"),
		Links: links,
	}
}
