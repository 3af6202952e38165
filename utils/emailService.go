package utils

import (
	"fmt"
	"html"
)

// HTML wrapper shared by every outgoing e-mail
func GetEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
			.content h2 { color: #1B3A5C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4CAF50; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>COURSEHUB</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				You are receiving this e-mail because you are enrolled in a CourseHub course.
			</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(title), bodyContent)
}

// --- Templates ---

// SubmissionGradedEmail is sent once manual grading finalizes a quiz attempt.
func SubmissionGradedEmail(name, quizTitle string, score int, passed bool) (subject, body string) {
	subject = "Your quiz has been graded: " + quizTitle
	verdict := "Unfortunately you did not reach the passing score this time."
	if passed {
		verdict = "Congratulations, you passed!"
	}
	content := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your attempt at <strong>%s</strong> has been fully graded.</p>
		<div class="info-box">
			<strong>Score:</strong> %d / 100
		</div>
		<p>%s</p>
	`, html.EscapeString(name), html.EscapeString(quizTitle), score, verdict)
	return subject, GetEmailTemplate("Quiz Graded", content)
}

// CertificateEmail is sent when a certificate request is approved.
func CertificateEmail(name, courseTitle, certificateNumber string) (subject, body string) {
	subject = "Course Completion Certificate: " + courseTitle
	content := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>.</p>
		<div class="info-box">
			<p>Your Certificate Number:</p>
			<h2>%s</h2>
		</div>
		<p>You can use this certificate number for verification purposes.</p>
	`, html.EscapeString(name), html.EscapeString(courseTitle), html.EscapeString(certificateNumber))
	return subject, GetEmailTemplate("Certificate of Completion", content)
}
