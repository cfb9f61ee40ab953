package posting

import (
	"encoding/json"
	"fmt"
	"os"
)

// Postings is the working collection the pipeline filters down.
type Postings struct {
	Items []*Posting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

// Exclude removes every posting whose field equals one of the target
// values and returns the removed ids.
func (p *Postings) Exclude(field string, targets []string) []string {
	var excluded []string
	for _, target := range targets {
		for idx := 0; idx < len(p.Items); {
			if p.Items[idx].GetStringField(field) == target {
				excluded = append(excluded, p.Items[idx].ID)
				p.RemoveByIndex(idx)
				// The swapped-in tail item lands at idx and is checked next.
				continue
			}
			idx++
		}
	}
	return excluded
}

// RemoveByIndex removes a posting from the list by index. Does not preserve order.
func (p *Postings) RemoveByIndex(idx int) {
	p.Items[idx] = p.Items[len(p.Items)-1]
	p.Items = p.Items[:len(p.Items)-1]
}

// ReportByCompany groups the postings per company for the interactive report.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		key := posting.Company
		if key == "" {
			key = "unknown"
		}

		entry := map[string]string{
			"title":    posting.Title,
			"url":      posting.ApplicationURL,
			"location": posting.Location,
			"salary":   posting.SalaryText(),
			"source":   posting.SourcePlatform,
		}
		if posting.Match != nil {
			entry["score"] = fmt.Sprintf("%.2f", posting.Match.Score)
			entry["recommendation"] = posting.Match.Recommendation
			entry["confidence"] = posting.Match.Confidence
		}

		report[key] = append(report[key], entry)
	}
	return report
}

// DumpToTmpFile writes the collection to a temporary JSON file and returns
// its path.
func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
