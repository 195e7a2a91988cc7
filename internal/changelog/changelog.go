// Package changelog derives a keep-a-changelog style document from commit
// history. Commits since the most recent tag are categorized by keywords in
// their subject line; without any tag the most recent commits are used.
package changelog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/rs/zerolog/log"
)

// fallbackLimit bounds collection when the repository has no tags.
const fallbackLimit = 50

// Section names in keep-a-changelog order.
var sectionOrder = []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"}

// Entry is one categorized commit.
type Entry struct {
	SHA     string `json:"sha"`
	Subject string `json:"subject"`
}

// Changelog groups commit entries by change category.
type Changelog struct {
	SinceTag string             `json:"since_tag,omitempty"`
	Sections map[string][]Entry `json:"sections"`
}

// Collect builds a changelog from the repository at path.
func Collect(path string) (*Changelog, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	tagName, tagHash := latestTag(repo)

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	cl := &Changelog{SinceTag: tagName, Sections: map[string][]Entry{}}

	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if tagHash != plumbing.ZeroHash && c.Hash == tagHash {
			return storer.ErrStop
		}
		if tagHash == plumbing.ZeroHash && count >= fallbackLimit {
			return storer.ErrStop
		}
		count++

		subject := subjectOf(c.Message)
		section := Categorize(subject)
		cl.Sections[section] = append(cl.Sections[section], Entry{
			SHA:     c.Hash.String()[:8],
			Subject: subject,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commits: %w", err)
	}

	log.Debug().Str("since", tagName).Int("commits", count).Msg("collected changelog entries")
	return cl, nil
}

// latestTag finds the tag whose commit is newest. Returns empty values when
// the repository has no resolvable tags.
func latestTag(repo *git.Repository) (string, plumbing.Hash) {
	iter, err := repo.Tags()
	if err != nil {
		return "", plumbing.ZeroHash
	}
	defer iter.Close()

	type tagged struct {
		name string
		hash plumbing.Hash
		when int64
	}
	var tags []tagged

	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		// Annotated tags point at a tag object, not the commit itself.
		if obj, err := repo.TagObject(hash); err == nil {
			hash = obj.Target
		}
		commit, err := repo.CommitObject(hash)
		if err != nil {
			return nil
		}
		tags = append(tags, tagged{
			name: ref.Name().Short(),
			hash: commit.Hash,
			when: commit.Committer.When.Unix(),
		})
		return nil
	})

	if len(tags) == 0 {
		return "", plumbing.ZeroHash
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].when != tags[j].when {
			return tags[i].when > tags[j].when
		}
		return tags[i].name > tags[j].name
	})
	return tags[0].name, tags[0].hash
}

// Categorize maps a commit subject to its changelog section by the leading
// type token, the conventional-commit position. Keywords appearing elsewhere
// in the subject ("Add feature flag") do not categorize.
func Categorize(subject string) string {
	typ := strings.ToLower(strings.TrimSpace(subject))
	if i := strings.IndexAny(typ, " :(!"); i >= 0 {
		typ = typ[:i]
	}
	switch {
	case typ == "feat" || typ == "feature":
		return "Added"
	case typ == "fix" || typ == "bugfix" || typ == "hotfix":
		return "Fixed"
	case strings.HasPrefix(typ, "remove"):
		return "Removed"
	case strings.HasPrefix(typ, "deprecat"):
		return "Deprecated"
	case strings.HasPrefix(typ, "secur"):
		return "Security"
	default:
		return "Changed"
	}
}

func subjectOf(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject)
}

// Markdown renders the changelog document.
func (cl *Changelog) Markdown() string {
	var b strings.Builder
	b.WriteString("# Changelog\n\n")
	if cl.SinceTag != "" {
		fmt.Fprintf(&b, "## [Unreleased] (since %s)\n", cl.SinceTag)
	} else {
		b.WriteString("## [Unreleased]\n")
	}

	for _, section := range sectionOrder {
		entries := cl.Sections[section]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n", section)
		for _, e := range entries {
			fmt.Fprintf(&b, "- %s (%s)\n", e.Subject, e.SHA)
		}
	}
	return b.String()
}
