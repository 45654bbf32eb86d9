package gateway

import (
	"html/template"
	"io"
)

var redirectTmpl = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Redirecting to payment</title></head>
<body>
<form id="bankForm" method="post" action="{{.Action}}">
{{- range .Inputs}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}" />
{{- end}}
<noscript><button type="submit">Continue to payment</button></noscript>
</form>
<script>document.getElementById('bankForm').submit();</script>
</body>
</html>
`))

var resultTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body>
<h2>{{.Title}}</h2>
<p>{{.Message}}</p>
{{- if .OrderID}}
<p>Order: {{.OrderID}}</p>
{{- end}}
</body>
</html>
`))

type formInput struct {
	Name  string
	Value string
}

// RenderRedirectForm menulis form HTML yang langsung di-submit ke gateway.
func RenderRedirectForm(w io.Writer, req *PaymentRequest) error {
	inputs := make([]formInput, 0, len(req.Fields))
	for _, name := range req.FieldNames() {
		inputs = append(inputs, formInput{Name: name, Value: req.Fields[name]})
	}
	return redirectTmpl.Execute(w, struct {
		Action template.URL
		Inputs []formInput
	}{
		Action: template.URL(req.GatewayURL),
		Inputs: inputs,
	})
}

// ResultPage adalah halaman yang dilihat pembeli setelah kembali dari bank.
type ResultPage struct {
	Title   string
	Message string
	OrderID string
}

func RenderResultPage(w io.Writer, page ResultPage) error {
	return resultTmpl.Execute(w, page)
}
