package browser

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	editorMissing     = "missing"
	editorUnsupported = "unsupported"
)

// setEditorTextJS replaces the contents of the first element matching the
// selector. It understands Ace, CodeMirror 5, CodeMirror 6 and plain form
// fields, and returns the kind of editor it found.
const setEditorTextJS = `(function(selector, text) {
	const el = document.querySelector(selector);
	if (!el) { return "missing"; }

	const aceHost = el.closest(".ace_editor");
	if (aceHost) {
		const editor = (aceHost.env && aceHost.env.editor) || (window.ace && window.ace.edit(aceHost));
		if (editor) {
			editor.setValue(text, -1);
			editor.focus();
			return "ace";
		}
	}

	const cm5Host = el.closest(".CodeMirror");
	if (cm5Host && cm5Host.CodeMirror) {
		cm5Host.CodeMirror.setValue(text);
		cm5Host.CodeMirror.focus();
		return "codemirror5";
	}

	const cm6Host = el.closest(".cm-editor");
	if (cm6Host) {
		const content = cm6Host.querySelector(".cm-content");
		const view = content && content.cmView && content.cmView.view;
		if (view) {
			view.dispatch({changes: {from: 0, to: view.state.doc.length, insert: text}});
			view.focus();
			return "codemirror6";
		}
	}

	if (el.tagName === "TEXTAREA" || el.tagName === "INPUT") {
		el.focus();
		el.value = text;
		el.dispatchEvent(new Event("input", {bubbles: true}));
		el.dispatchEvent(new Event("change", {bubbles: true}));
		return "textarea";
	}
	return "unsupported";
})(%s, %s)`

func editorScript(selector, text string) (string, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return "", fmt.Errorf("failed to encode selector: %w", err)
	}
	body, err := json.Marshal(text)
	if err != nil {
		return "", fmt.Errorf("failed to encode editor text: %w", err)
	}
	return fmt.Sprintf(setEditorTextJS, sel, body), nil
}
