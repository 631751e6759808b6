package analyzer

import (
	"fmt"
	"strings"
)

// CompanyProfile is the structured result extracted from a company's
// website.
type CompanyProfile struct {
	Name        string   `json:"name"`
	Website     string   `json:"website"`
	Contact     string   `json:"contact"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Takeaways   []string `json:"takeaways"`
	Niche       string   `json:"niche"`
}

// parseProfile decodes the pipe-separated "Key: value" line the
// extraction prompt instructs the model to produce.
func parseProfile(text string) (CompanyProfile, error) {
	var out CompanyProfile
	found := false

	for _, segment := range strings.Split(text, "|") {
		key, value, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "company name":
			out.Name = value
			found = true
		case "website":
			out.Website = value
			found = true
		case "contact":
			out.Contact = value
		case "description":
			out.Description = value
		case "tags":
			out.Tags = splitList(value)
		case "takeaways":
			out.Takeaways = splitList(value)
		case "niche":
			out.Niche = value
		}
	}

	if !found {
		return CompanyProfile{}, fmt.Errorf("response does not follow the extraction format: %q", text)
	}
	return out, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
