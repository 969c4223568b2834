package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ginjaninja78/loyalty-card-report/internal/period"
)

// ErrorSubject is the subject of every failure notice.
const ErrorSubject = "Ошибка при формировании ежемесячного отчета по Картам СТО"

var (
	successBody = template.Must(template.New("success").Parse(`<html>
  <head></head>
  <body>
    <p>
      Объединенный отчет по картам лояльности СТО за {{.Period}}г. во вложении<br>
      Отчет сформирован автоматически без участия сотрудников.<br>
      Если обнаружены ошибки, то прошу сообщить администраторам 1С.<br>
    </p>
  </body>
</html>`))

	noDataBody = template.Must(template.New("no_data").Parse(
		`Нет отчета продаж по картам СТО за предыдущий месяц.<br>` +
			`Разместите отчет в папке:<br>{{.Location}}`))

	malformedBody = template.Must(template.New("malformed").Parse(
		`Отчет {{.File}} не удалось обработать: {{.Reason}}.<br>` +
			`Исправьте или замените отчет в папке:<br>{{.Location}}`))
)

// Success builds the report delivery for period p.
func Success(p period.Period, to []string, report string) (Message, error) {
	body, err := render(successBody, struct{ Period string }{p.Numeric()})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Subject:     "Продажи по картам лояльности СТО за " + p.Numeric(),
		HTMLBody:    body,
		To:          to,
		Attachments: []string{report},
	}, nil
}

// NoData builds the notice sent when the source location holds no data.
func NoData(location string, to []string) (Message, error) {
	body, err := render(noDataBody, struct{ Location string }{location})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: ErrorSubject, HTMLBody: body, To: to}, nil
}

// Malformed builds the notice sent when a source workbook cannot be read.
func Malformed(location, file, reason string, to []string) (Message, error) {
	body, err := render(malformedBody, struct{ Location, File, Reason string }{location, file, reason})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: ErrorSubject, HTMLBody: body, To: to}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s message: %w", t.Name(), err)
	}
	return buf.String(), nil
}
