// Package mailer delivers interpretation results to users over SMTP as
// the HTML email the product has always sent: greeting, intro, the
// interpretation in a highlighted block, footer and signature, localized
// to the request language.
package mailer

import (
    "bytes"
    "fmt"
    "html/template"
    "strings"

    gomail "gopkg.in/gomail.v2"
)

var bodyTmpl = template.Must(template.New("interpretation").Parse(`
    <html>
      <body style="font-family: Arial, sans-serif; color: #222; background-color: #f7f7f7; padding: 20px;">
        <div style="max-width: 600px; margin: auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 6px rgba(0,0,0,0.1);">
          <h2 style="color: #5C4DB1;">{{.Greeting}}</h2>
          <p>{{.Intro}}</p>
          <div style="background-color: #f0f0ff; border-left: 4px solid #5C4DB1; padding: 15px; margin: 20px 0;">
            {{.Interpretation}}
          </div>
          <p>{{.Footer}}</p>
          <p style="margin-top: 30px;">{{.Signature}}</p>
        </div>
      </body>
    </html>`))

type bodyData struct {
    Greeting       string
    Intro          string
    Footer         string
    Signature      string
    Interpretation template.HTML
}

// Mailer sends interpretation emails through an SMTP relay.
type Mailer struct {
    dialer     *gomail.Dialer
    from       string
    senderName string
    bcc        string
}

// New builds a Mailer. bcc may be empty; when set, every message is
// blind-copied there so the team keeps an archive of sent
// interpretations.
func New(host string, port int, user, pass, senderName, bcc string) *Mailer {
    return &Mailer{
        dialer:     gomail.NewDialer(host, port, user, pass),
        from:       user,
        senderName: senderName,
        bcc:        bcc,
    }
}

// SendInterpretation renders and delivers the interpretation email.
func (m *Mailer) SendInterpretation(to, name, interpretation, language string) error {
    subject, body, err := Render(name, interpretation, language)
    if err != nil {
        return err
    }
    msg := gomail.NewMessage()
    msg.SetAddressHeader("From", m.from, m.senderName)
    msg.SetHeader("To", to)
    if m.bcc != "" {
        msg.SetHeader("Bcc", m.bcc)
    }
    msg.SetHeader("Subject", subject)
    msg.SetBody("text/html", body)
    return m.dialer.DialAndSend(msg)
}

// Render produces the localized subject and HTML body for an
// interpretation email. Newlines in the interpretation become <br> so the
// paragraphs survive the HTML body; everything else is escaped.
func Render(name, interpretation, language string) (subject, body string, err error) {
    var greeting, intro, footer, signature string
    if language == "en" {
        subject = "Your dream interpretation from Morphea"
        greeting = fmt.Sprintf("Hello %s,", name)
        intro = "Thank you for trusting Morphea with your dream. Based on what you shared, our AI interpreted the following:"
        footer = "Remember, each dream is unique and deeply personal. If you'd like to submit another dream, we're here for you."
        signature = "— The Morphea Team"
    } else {
        subject = "Tu interpretación de sueño con Morphea"
        greeting = fmt.Sprintf("Hola %s,", name)
        intro = "Gracias por confiar tu sueño a Morphea. Hemos analizado cuidadosamente lo que compartiste y esto es lo que nuestra IA ha percibido:"
        footer = "Recuerda que cada sueño es único y muy personal. Si deseas enviar otro sueño o recibir más orientación, estamos aquí para ti."
        signature = "— El equipo de Morphea"
    }

    lines := strings.Split(interpretation, "\n")
    escaped := make([]string, len(lines))
    for i, l := range lines {
        escaped[i] = template.HTMLEscapeString(l)
    }

    var buf bytes.Buffer
    err = bodyTmpl.Execute(&buf, bodyData{
        Greeting:       greeting,
        Intro:          intro,
        Footer:         footer,
        Signature:      signature,
        Interpretation: template.HTML(strings.Join(escaped, "<br>")),
    })
    if err != nil {
        return "", "", err
    }
    return subject, buf.String(), nil
}
