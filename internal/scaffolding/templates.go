package scaffolding

// ComponentTemplate is a starting point for a new component definition.
// Markup, Styles and Script may refer to the new component's name as
// [[.Name]]; {{...}} placeholders are left for the renderer, which only
// substitutes them in Markup.
type ComponentTemplate struct {
	Name        string
	Description string
	Props       []Prop
	Markup      string
	Styles      string
	Script      string
	// Starter marks templates written by "partials init"
	Starter bool
}

// Prop is a declared prop with its default value.
type Prop struct {
	Name    string
	Default string
}

// GetBuiltinTemplates returns all built-in component templates
func GetBuiltinTemplates() map[string]ComponentTemplate {
	return map[string]ComponentTemplate{
		"button":   getButtonTemplate(),
		"card":     getCardTemplate(),
		"badge":    getBadgeTemplate(),
		"alert":    getAlertTemplate(),
		"progress": getProgressTemplate(),
		"blank":    getBlankTemplate(),
	}
}

func getButtonTemplate() ComponentTemplate {
	return ComponentTemplate{
		Name:        "button",
		Description: "A customizable button",
		Props: []Prop{
			{Name: "text", Default: "Click Me"},
			{Name: "color", Default: "#7c5cbf"},
		},
		Markup: `<button class="btn" style="background: {{color}};">{{text}}</button>`,
		Styles: `.btn {
  color: white;
  border: none;
  padding: 8px 16px;
  border-radius: 4px;
  cursor: pointer;
  font-size: 14px;
}
.btn:hover {
  opacity: 0.9;
}`,
		Starter: true,
	}
}

func getCardTemplate() ComponentTemplate {
	return ComponentTemplate{
		Name:        "card",
		Description: "A simple card with a title and content",
		Props: []Prop{
			{Name: "title", Default: "Card Title"},
			{Name: "content", Default: "Card content goes here"},
			{Name: "color", Default: "#f5f5f5"},
		},
		Markup: `<div class="card" style="background: {{color}};">
  <h3 class="card-title">{{title}}</h3>
  <p class="card-content">{{content}}</p>
</div>`,
		Styles: `.card {
  border-radius: 8px;
  padding: 16px;
  margin: 8px 0;
  box-shadow: 0 2px 4px rgba(0,0,0,0.1);
}
.card-title {
  margin: 0 0 8px 0;
  font-size: 18px;
}
.card-content {
  margin: 0;
  color: #555;
}`,
		Starter: true,
	}
}

func getBadgeTemplate() ComponentTemplate {
	return ComponentTemplate{
		Name:        "badge",
		Description: "A small inline label",
		Props: []Prop{
			{Name: "text", Default: "New"},
			{Name: "color", Default: "#4caf50"},
		},
		Markup: `<span class="badge" style="background: {{color}};">{{text}}</span>`,
		Styles: `.badge {
  color: white;
  padding: 2px 8px;
  border-radius: 12px;
  font-size: 12px;
  font-weight: 600;
  display: inline-block;
}`,
		Starter: true,
	}
}

func getAlertTemplate() ComponentTemplate {
	return ComponentTemplate{
		Name:        "alert",
		Description: "A callout box for notes and warnings",
		Props: []Prop{
			{Name: "title", Default: "Note"},
			{Name: "message", Default: "Something worth knowing."},
			{Name: "color", Default: "#2196f3"},
		},
		Markup: `<div class="alert" role="note" style="border-color: {{color}};">
  <strong class="alert-title" style="color: {{color}};">{{title}}</strong>
  <span class="alert-message">{{message}}</span>
</div>`,
		Styles: `.alert {
  border-left: 4px solid;
  background: #fafafa;
  padding: 8px 12px;
  margin: 8px 0;
}
.alert-title {
  margin-right: 6px;
}`,
	}
}

func getProgressTemplate() ComponentTemplate {
	return ComponentTemplate{
		Name:        "progress",
		Description: "A progress bar filled by its script",
		Props: []Prop{
			{Name: "label", Default: "Progress"},
			{Name: "value", Default: "40"},
			{Name: "color", Default: "#7c5cbf"},
		},
		Markup: `<div class="progress"><div class="progress-fill" style="background: {{color}};"></div></div>
<span class="progress-label">{{label}}: {{value}}%</span>`,
		Styles: `.progress {
  background: #eee;
  border-radius: 4px;
  height: 8px;
  overflow: hidden;
}
.progress-fill {
  height: 100%;
  width: 0;
}
.progress.complete .progress-fill {
  background: #4caf50 !important;
}`,
		Script: `var pct = Math.max(0, Math.min(100, parseInt(props.value, 10) || 0));
var fill = el.querySelector(".progress-fill");
if (fill) {
  fill.setAttribute("style", fill.getAttribute("style") + " width: " + pct + "%;");
}
if (pct >= 100) {
  var track = el.querySelector(".progress");
  if (track) {
    track.addClass("complete");
  }
}`,
		Starter: true,
	}
}

func getBlankTemplate() ComponentTemplate {
	return ComponentTemplate{
		Description: "A new component",
		Props: []Prop{
			{Name: "text", Default: "Hello"},
		},
		Markup: `<div class="[[.Name]]">{{text}}</div>`,
		Styles: `.[[.Name]] {
  display: inline-block;
}`,
	}
}
