package mailer

import (
	"fmt"
	"os"

	"taskhub/src/lib"
)

// Recipient is the person a membership notification is about.
type Recipient struct {
	Name  string
	Email string
}

func sender() (string, string) {
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "noreply@taskhub.dev"
	}
	return from, "Taskhub"
}

// NewMembershipMessage renders the email for a membership job. It returns nil for jobs that do
// not notify anyone.
func NewMembershipMessage(jobName, scopeLabel, role string, to Recipient) *lib.SendMailInput {
	var subject, body string
	switch jobName {
	case "member.added":
		subject = fmt.Sprintf("You were added to %s", scopeLabel)
		body = fmt.Sprintf("Hi %s,\n\nYou are now a member of %s.", to.Name, scopeLabel)
	case "member.role_updated":
		subject = fmt.Sprintf("Your role in %s changed", scopeLabel)
		body = fmt.Sprintf("Hi %s,\n\nYour role in %s is now %s.", to.Name, scopeLabel, role)
	case "member.removed":
		subject = fmt.Sprintf("You were removed from %s", scopeLabel)
		body = fmt.Sprintf("Hi %s,\n\nYou are no longer a member of %s.", to.Name, scopeLabel)
	case "ownership.transferred":
		subject = fmt.Sprintf("You now own %s", scopeLabel)
		body = fmt.Sprintf("Hi %s,\n\nOwnership of %s has been transferred to you.", to.Name, scopeLabel)
	default:
		return nil
	}
	from, fromName := sender()
	return &lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to.Email},
		Subject:  subject,
		Body:     body,
	}
}
