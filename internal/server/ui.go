package server

import "net/http"

// handleIndex serves the form UI: a topic/provider form for generation and
// a paste box for detection, both talking to the JSON API.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Paper Generator</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
  h1 { font-size: 1.4rem; }
  fieldset { margin-bottom: 1.5rem; border: 1px solid #ccc; border-radius: 4px; }
  label { display: block; margin: 0.5rem 0 0.2rem; }
  input[type=text], textarea { width: 100%; box-sizing: border-box; padding: 0.4rem; }
  textarea { height: 10rem; font-family: monospace; }
  button { margin-top: 0.8rem; padding: 0.4rem 1.2rem; }
  pre { background: #f4f4f4; padding: 0.8rem; white-space: pre-wrap; word-break: break-word; }
  .links a { margin-right: 1rem; }
</style>
</head>
<body>
<h1>Research Paper Generator</h1>

<fieldset>
<legend>Generate</legend>
<form id="generate-form">
  <label for="topic">Topic</label>
  <input type="text" id="topic" name="topic" placeholder="Quantum Computing" required>
  <label for="provider">Provider</label>
  <select id="provider" name="provider">
    <option value="Gemini">Gemini</option>
    <option value="Groq">Groq</option>
  </select>
  <button type="submit">Generate</button>
</form>
<pre id="generate-result" hidden></pre>
<div class="links" id="generate-links" hidden>
  <a id="tex-link" href="#">Download LaTeX</a>
  <a id="pdf-link" href="#" hidden>Download PDF</a>
</div>
</fieldset>

<fieldset>
<legend>Detect AI-generated text</legend>
<form id="detect-form">
  <label for="latex">LaTeX or plain text</label>
  <textarea id="latex" name="latex" required></textarea>
  <button type="submit">Detect</button>
</form>
<pre id="detect-result" hidden></pre>
</fieldset>

<script>
async function postJSON(url, body) {
  const resp = await fetch(url, {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify(body),
  });
  const data = await resp.json();
  if (!resp.ok) throw new Error(data.error || resp.statusText);
  return data;
}

document.getElementById("generate-form").addEventListener("submit", async (e) => {
  e.preventDefault();
  const out = document.getElementById("generate-result");
  const links = document.getElementById("generate-links");
  out.hidden = false;
  links.hidden = true;
  out.textContent = "Generating, this can take a minute...";
  try {
    const data = await postJSON("/generate", {
      topic: document.getElementById("topic").value,
      provider: document.getElementById("provider").value,
    });
    out.textContent = "Run " + data.run_id + " complete.";
    document.getElementById("tex-link").href = "/download/tex/" + data.run_id;
    const pdfLink = document.getElementById("pdf-link");
    if (data.pdf_filename) {
      pdfLink.href = "/download/pdf/" + data.run_id;
      pdfLink.hidden = false;
    } else {
      pdfLink.hidden = true;
      out.textContent += " PDF compilation was not available.";
    }
    links.hidden = false;
  } catch (err) {
    out.textContent = "Error: " + err.message;
  }
});

document.getElementById("detect-form").addEventListener("submit", async (e) => {
  e.preventDefault();
  const out = document.getElementById("detect-result");
  out.hidden = false;
  out.textContent = "Scoring...";
  try {
    const data = await postJSON("/detect_raw", {
      latex: document.getElementById("latex").value,
    });
    out.textContent = "Score: " + data.score + "/100\n" + data.reasoning;
  } catch (err) {
    out.textContent = "Error: " + err.message;
  }
});
</script>
</body>
</html>
`
