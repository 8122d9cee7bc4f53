package document

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ReloadPath is the websocket endpoint the live reload script connects to.
const ReloadPath = "/ws"

const baseStyles = `body{font-family:system-ui,sans-serif;max-width:52rem;margin:2rem auto;padding:0 1rem;line-height:1.6}
.partials-component{display:inline-block}
.partials-component.partials-block{display:block;margin:.75rem 0}
.partials-error{display:block;border:1px solid #e5484d;border-radius:6px;background:#fff0f0;color:#8a1c1c;padding:.5rem .75rem;margin:.5rem 0}
.partials-error-icon{margin-right:.5rem}
.partials-fence{margin:1rem 0}`

const reloadScript = `(function(){
var proto=location.protocol==="https:"?"wss:":"ws:";
function connect(){
var ws=new WebSocket(proto+"//"+location.host+"` + ReloadPath + `");
ws.onmessage=function(e){try{var m=JSON.parse(e.data);if(m.type==="reload"){location.reload();}}catch(_){}};
ws.onclose=function(){setTimeout(connect,1000);};
}
connect();
})();`

// Page wraps a rendered document body in a standalone HTML page. When
// liveReload is set the page reconnects to the preview server's websocket
// and reloads on every broadcast.
func Page(title string, body []byte, liveReload bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+`</title><style>`+baseStyles+`</style></head><body>`); err != nil {
			return err
		}
		if err := templ.Raw(string(body)).Render(ctx, w); err != nil {
			return err
		}
		if liveReload {
			if _, err := io.WriteString(w, `<script>`+reloadScript+`</script>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
