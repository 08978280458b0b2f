package pageglot

import "context"

// SelectionSource reports the page's current text selection.
type SelectionSource func() (text string, hasSelection bool)

// ContentAgent is the content-context endpoint of the message
// boundary: it executes commands from the background coordinator
// against the tab's session and gateway.
type ContentAgent struct {
	session   *Session
	gw        *Gateway
	selection SelectionSource
}

// NewContentAgent creates the message handler for one tab's content
// context. selection may be nil when the host exposes no selection.
func NewContentAgent(session *Session, gw *Gateway, selection SelectionSource) *ContentAgent {
	return &ContentAgent{session: session, gw: gw, selection: selection}
}

// Handle dispatches one incoming message and produces its reply.
func (a *ContentAgent) Handle(ctx context.Context, msg Message) Response {
	resp := Response{ID: msg.ID}

	switch msg.Type {
	case MsgPing:
		resp.Success = true

	case MsgGetStatus:
		resp.Success = true
		resp.IsTranslated = a.session.Translated()

	case MsgTranslatePage:
		result, err := a.session.StartFullSweep(ctx, LanguagePreference{
			SourceLanguage: msg.SourceLanguage,
			TargetLanguage: msg.TargetLanguage,
		})
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Success = true
		resp.TranslatedCount = result.Translated

	case MsgCancelTranslatePage:
		a.session.Cancel()
		resp.Success = true

	case MsgTranslateText:
		result, err := a.gw.SmartTranslate(ctx, msg.Text, msg.SourceLanguage, msg.TargetLanguage)
		if err != nil {
			resp.Error = err.Error()
			return resp
		}
		resp.Success = true
		resp.Result = result.Text

	case MsgGetSelectedText:
		resp.Success = true
		if a.selection != nil {
			resp.Text, resp.HasSelection = a.selection()
		}

	default:
		resp.Error = "unknown message type: " + string(msg.Type)
	}

	return resp
}
