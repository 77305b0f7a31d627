package render

import "html/template"

const postsHTML = `{{define "posts"}}<div class="tweets" data-username="{{.Handle}}" data-state="{{.State}}">
{{- if eq .State "loading"}}Loading…
{{- else if eq .State "not_found"}}No posts found.
{{- else if eq .State "load_failed"}}Failed to load{{with .Detail}} ({{.}}){{end}}.
{{- else}}{{range .Cards}}
<article class="tweet-card">
  <div class="tweet-meta">{{.Date}}</div>
  <div class="tweet-text">{{.Text}}</div>
  <div><a class="link" href="{{.StatusURL}}" target="_blank" rel="noreferrer">Open on X →</a></div>
</article>{{end}}
{{end -}}
</div>{{end}}`

const widgetHTML = `{{define "widget"}}<section class="profile" data-username="{{.Profile.Handle}}">
{{- with .Profile}}{{if .ImageURL}}<img class="avatar" src="{{.ImageURL}}" alt="{{.Name}}">{{end}}{{if .Name}}<h2>{{.Name}}</h2>{{end}}{{end}}
{{template "posts" .Posts}}
</section>{{end}}`

var templates = template.Must(template.New("render").Parse(postsHTML + widgetHTML))
