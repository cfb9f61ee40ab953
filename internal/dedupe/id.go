package dedupe

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	linkedinJobRe  = regexp.MustCompile(`linkedin\.com/jobs/view/(\d+)`)
	indeedJobRe    = regexp.MustCompile(`indeed\.com/.*jk=([a-f0-9]+)`)
	glassdoorJobRe = regexp.MustCompile(`glassdoor\.com/.*jobListingId=(\d+)`)
)

// GenerateID derives a stable application id. Known job board URLs yield
// platform-prefixed ids, other URLs a host-prefixed hash, and postings
// without a usable URL a hash of title and company. The hash is a
// fingerprint, not a security boundary.
func GenerateID(title, company, jobURL string) string {
	if jobURL != "" {
		if id := idFromURL(jobURL); id != "" {
			return id
		}
	}

	content := fmt.Sprintf("%s_%s",
		strings.ToLower(strings.TrimSpace(title)),
		strings.ToLower(strings.TrimSpace(company)),
	)
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])[:12]
}

func idFromURL(jobURL string) string {
	if m := linkedinJobRe.FindStringSubmatch(jobURL); m != nil {
		return "linkedin_" + m[1]
	}
	if m := indeedJobRe.FindStringSubmatch(jobURL); m != nil {
		return "indeed_" + m[1]
	}
	if m := glassdoorJobRe.FindStringSubmatch(jobURL); m != nil {
		return "glassdoor_" + m[1]
	}

	parsed, err := url.Parse(jobURL)
	if err != nil || parsed.Host == "" {
		return ""
	}

	sum := md5.Sum([]byte(jobURL))
	host := strings.TrimPrefix(parsed.Host, "www.")
	return fmt.Sprintf("%s_%s", host, hex.EncodeToString(sum[:])[:8])
}
