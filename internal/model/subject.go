package model

import "strings"

type Subject string

const (
	SubjectDSA  Subject = "dsa"
	SubjectOS   Subject = "os"
	SubjectHR   Subject = "hr"
	SubjectDBMS Subject = "dbms"
)

// Subjects lists every known subject tag. The set is closed: adding a tag
// means extending the directory data and the question sets below together.
var Subjects = []Subject{SubjectDSA, SubjectOS, SubjectHR, SubjectDBMS}

var subjectLabels = map[Subject]string{
	SubjectDSA:  "Data Structures & Algorithms (DSA)",
	SubjectOS:   "Operating Systems (OS)",
	SubjectHR:   "Human Resources (HR)",
	SubjectDBMS: "Database Management Systems (DBMS)",
}

// Label returns the user-facing name for the subject tag.
func (s Subject) Label() string {
	if label, ok := subjectLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is one of the known subject tags.
func (s Subject) Valid() bool {
	_, ok := subjectLabels[s]
	return ok
}

// ParseSubject parses a subject tag. The second return value is false for
// anything outside the closed set.
func ParseSubject(raw string) (Subject, bool) {
	s := Subject(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

var prepQuestions = map[Subject][]string{
	SubjectHR: {
		"Where do you see yourself in 5 years?",
		"Why should we hire you?",
		"Tell me about a time you faced a challenge at work",
		"What are your greatest strengths and weaknesses?",
	},
	SubjectDSA: {
		"Difference between stack and queue",
		"Explain recursion with an example",
		"Implement a binary search algorithm",
		"Find the time complexity of nested loops",
	},
	SubjectOS: {
		"Explain CPU scheduling",
		"Difference between process and thread",
		"What is virtual memory?",
		"Explain deadlock and its prevention",
	},
	SubjectDBMS: {
		"Explain ACID properties",
		"Difference between SQL and NoSQL",
		"What is database normalization?",
		"Explain different types of joins",
	},
}

// QuestionsFor maps a free-text subject string to its preparation question
// set. Matching normalizes to lowercase letters only and substring-matches
// against tag aliases. Unmatched subjects fall back to the HR set so a
// confirmation email never fails over its prep list.
func QuestionsFor(rawSubject string) []string {
	key := normalizeSubjectKey(rawSubject)

	switch {
	case strings.Contains(key, "hr") || strings.Contains(key, "human"):
		return prepQuestions[SubjectHR]
	case strings.Contains(key, "dsa") || strings.Contains(key, "algorithm"):
		return prepQuestions[SubjectDSA]
	case strings.Contains(key, "os") || strings.Contains(key, "operating"):
		return prepQuestions[SubjectOS]
	case strings.Contains(key, "dbms") || strings.Contains(key, "database"):
		return prepQuestions[SubjectDBMS]
	}
	return prepQuestions[SubjectHR]
}

func normalizeSubjectKey(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
