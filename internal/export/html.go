package export

import (
	"bytes"
	"html/template"
)

var htmlTmpl = template.Must(template.New("ledger").Parse(`<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="utf-8">
<title>Sao kê tài khoản{{if .AccountInfo.AccountNumber}} — {{.AccountInfo.AccountNumber}}{{end}}</title>
</head>
<body style="font-family:Arial,sans-serif;margin:2rem">
{{if .AccountInfo.AccountName}}<p style="margin:0"><strong>{{.AccountInfo.AccountName}}</strong></p>{{end}}
{{if .AccountInfo.AccountNumber}}<p style="margin:0">Số tài khoản: {{.AccountInfo.AccountNumber}}</p>{{end}}
{{if .AccountInfo.BankName}}<p style="margin:0">{{.AccountInfo.BankName}}{{if .AccountInfo.Branch}} — {{.AccountInfo.Branch}}{{end}}</p>{{end}}
<table style="border-collapse:collapse;margin-top:1rem;width:100%">
<thead>
<tr>{{range .Header}}<th style="border:1px solid #cbd5e1;background:#1e293b;color:#fff;padding:6px 10px;text-align:left">{{.}}</th>{{end}}</tr>
</thead>
<tbody>
<tr>{{range .Opening}}<td style="border:1px solid #cbd5e1;padding:6px 10px;background:#f1f5f9;font-style:italic">{{.}}</td>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td style="border:1px solid #cbd5e1;padding:6px 10px">{{.}}</td>{{end}}</tr>
{{end}}<tr>{{range .Totals}}<td style="border:1px solid #cbd5e1;padding:6px 10px;background:#f1f5f9;font-weight:bold">{{.}}</td>{{end}}</tr>
</tbody>
</table>
</body>
</html>
`))

func renderHTML(t Table) ([]byte, error) {
	data := struct {
		Table
		Header []string
	}{Table: t, Header: Header}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
