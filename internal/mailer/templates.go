package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/v-anushka05/mockmate-backend/internal/model"
)

// Kind identifies a notification template.
type Kind string

const (
	KindWelcomeNotice       Kind = "WelcomeNotice"
	KindBookingConfirmation Kind = "BookingConfirmation"
)

type welcomeData struct {
	Name    string
	BaseURL string
}

type confirmationData struct {
	UserName    string
	Interviewer string
	Company     string
	Position    string
	Subject     string
	Date        string
	Time        string
	MeetingLink string
	Questions   []string
	BaseURL     string
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Welcome to MockMate</title>
</head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 40px 20px; text-align: center; color: white; border-radius: 8px;">
    <h1 style="margin: 0; font-size: 32px;">MockMate</h1>
    <p style="margin: 10px 0 0 0; font-size: 18px;">🚀 New Member</p>
  </div>
  <div style="padding: 40px 20px;">
    <h2 style="color: #1a202c;">Welcome, {{.Name}}! 🎉</h2>
    <p style="color: #4a5568; font-size: 18px;">You're officially a MockMate!</p>
    <p>We're thrilled to have you join MockMate – your new partner for interview prep and career growth!</p>
    <div style="text-align: center; margin: 40px 0;">
      <a href="{{.BaseURL}}/dashboard" style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 15px 30px; border-radius: 8px; text-decoration: none; font-weight: bold;">Go to Dashboard</a>
    </div>
    <p><strong>Best regards,</strong><br>The MockMate Team</p>
  </div>
</body>
</html>
`))

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Interview Confirmed</title>
</head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, #48bb78 0%, #38a169 100%); padding: 40px 20px; text-align: center; color: white; border-radius: 8px;">
    <h1 style="margin: 0; font-size: 32px;">MockMate</h1>
    <p style="margin: 10px 0 0 0; font-size: 18px;">🎉 Interview Confirmed! 🎉</p>
  </div>
  <div style="padding: 40px 20px;">
    <h2 style="color: #1a202c;">Hello {{.UserName}},</h2>
    <p>Your mock interview has been successfully scheduled with <strong>{{.Interviewer}}</strong> on <strong>{{.Date}}</strong>.</p>
    <div style="background-color: #f7fafc; border: 1px solid #e2e8f0; border-radius: 8px; padding: 25px; margin: 25px 0;">
      <h3 style="margin-top: 0; color: #2d3748;">Interview Details</h3>
      <p><strong>Date &amp; Time:</strong> {{.Date}} at {{.Time}}</p>
      <p><strong>Subject:</strong> {{.Subject}}</p>
      <p><strong>Interviewer:</strong> {{.Interviewer}}, {{.Position}} at {{.Company}}</p>
      <p><strong>Meeting Link:</strong> <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>
    </div>
    <div style="margin: 30px 0;">
      <h3 style="color: #2d3748;">Questions to prepare</h3>
      <ul style="background-color: #f7fafc; border-radius: 8px; padding: 20px 20px 20px 40px;">
        {{- range .Questions}}
        <li style="margin-bottom: 10px;">{{.}}</li>
        {{- end}}
      </ul>
    </div>
    <p><strong>Best regards,</strong><br>The MockMate Team</p>
  </div>
</body>
</html>
`))

// RenderWelcome produces the WelcomeNotice message for a new user.
func RenderWelcome(user *model.User, baseURL string) (*Message, error) {
	var body strings.Builder
	err := welcomeTmpl.Execute(&body, welcomeData{Name: user.Name, BaseURL: baseURL})
	if err != nil {
		return nil, &model.TemplateError{Template: string(KindWelcomeNotice), Err: err}
	}

	return &Message{
		To:      user.Email,
		Subject: fmt.Sprintf("🎉 Welcome to MockMate, %s!", user.Name),
		HTML:    body.String(),
	}, nil
}

// RenderBookingConfirmation produces the BookingConfirmation message.
// The prep question block falls back to the HR set for subjects outside
// the known tags instead of failing the render.
func RenderBookingConfirmation(user *model.User, interviewer *model.Interviewer, booking *model.Booking, baseURL string) (*Message, error) {
	if user.Email == "" {
		return nil, &model.TemplateError{
			Template: string(KindBookingConfirmation),
			Err:      fmt.Errorf("recipient address is empty"),
		}
	}

	data := confirmationData{
		UserName:    user.Name,
		Interviewer: interviewer.Name,
		Company:     interviewer.Company,
		Position:    interviewer.Position,
		Subject:     booking.Subject.Label(),
		Date:        booking.ScheduledDate.Format("January 2, 2006"),
		Time:        booking.ScheduledTime,
		MeetingLink: booking.MeetingLink,
		Questions:   model.QuestionsFor(string(booking.Subject)),
		BaseURL:     baseURL,
	}

	var body strings.Builder
	if err := confirmationTmpl.Execute(&body, data); err != nil {
		return nil, &model.TemplateError{Template: string(KindBookingConfirmation), Err: err}
	}

	return &Message{
		To:      user.Email,
		Subject: "🎯 Your Mock Interview is Confirmed!",
		HTML:    body.String(),
	}, nil
}
