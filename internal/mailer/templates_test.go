package mailer

import (
	"strings"
	"testing"

	"github.com/v-anushka05/mockmate-backend/internal/model"
)

func TestRenderWelcome(t *testing.T) {
	msg, err := RenderWelcome(testUser(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("RenderWelcome: %v", err)
	}

	if msg.To != "anushka@example.com" {
		t.Errorf("to = %q", msg.To)
	}
	if msg.Subject != "🎉 Welcome to MockMate, Anushka!" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Welcome, Anushka!") {
		t.Error("body is missing the greeting")
	}
	if !strings.Contains(msg.HTML, "http://localhost:8080/dashboard") {
		t.Error("body is missing the dashboard link")
	}
}

func TestRenderBookingConfirmation(t *testing.T) {
	msg, err := RenderBookingConfirmation(testUser(), testInterviewer(), testBooking(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("RenderBookingConfirmation: %v", err)
	}

	if msg.Subject != "🎯 Your Mock Interview is Confirmed!" {
		t.Errorf("subject = %q", msg.Subject)
	}

	for _, want := range []string{
		"Hello Anushka",
		"John Smith",
		"Senior Software Engineer",
		"Google",
		"June 10, 2025",
		"10:00 AM",
		"Data Structures &amp; Algorithms (DSA)",
		"https://meet.google.com/itd-ptkv-bge",
	} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("body is missing %q", want)
		}
	}
}

func TestRenderBookingConfirmationQuestionSets(t *testing.T) {
	// One marker question per known tag; the rendered prep block must
	// match the booking's subject.
	markers := map[model.Subject]string{
		model.SubjectDSA:  "Explain recursion with an example",
		model.SubjectOS:   "What is virtual memory?",
		model.SubjectHR:   "Why should we hire you?",
		model.SubjectDBMS: "Explain ACID properties",
	}

	for subject, marker := range markers {
		booking := testBooking()
		booking.Subject = subject

		msg, err := RenderBookingConfirmation(testUser(), testInterviewer(), booking, "")
		if err != nil {
			t.Fatalf("render for %s: %v", subject, err)
		}
		if !strings.Contains(msg.HTML, marker) {
			t.Errorf("%s confirmation is missing %q", subject, marker)
		}
	}
}

func TestRenderEscapesUserInput(t *testing.T) {
	user := testUser()
	user.Name = "<script>alert(1)</script>"

	msg, err := RenderWelcome(user, "")
	if err != nil {
		t.Fatalf("RenderWelcome: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("user input must be escaped in the rendered body")
	}
}
