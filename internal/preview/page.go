package preview

const previewHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>route2video preview</title>
<style>
  body { margin: 0; background: #1c2833; color: #ecf0f1; font-family: sans-serif;
         display: flex; flex-direction: column; align-items: center; }
  img  { max-width: 96vw; max-height: 84vh; margin-top: 12px;
         box-shadow: 0 4px 24px rgba(0,0,0,.5); }
  .bar { margin: 10px; }
  button { background: #2980b9; color: white; border: 0; border-radius: 4px;
           padding: 8px 18px; margin: 0 4px; font-size: 15px; cursor: pointer; }
  button:hover { background: #3498db; }
  #state { margin-left: 12px; color: #95a5a6; }
</style>
</head>
<body>
<img id="frame" alt="preview">
<div class="bar">
  <button onclick="send('pause')">Pause</button>
  <button onclick="send('play')">Play</button>
  <button onclick="send('restart')">Restart</button>
  <span id="state">connecting…</span>
</div>
<script>
  const img = document.getElementById('frame');
  const state = document.getElementById('state');
  const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
  ws.binaryType = 'blob';
  let lastURL = null;
  ws.onopen = () => { state.textContent = 'live'; };
  ws.onclose = () => { state.textContent = 'disconnected'; };
  ws.onmessage = (ev) => {
    const url = URL.createObjectURL(ev.data);
    img.src = url;
    if (lastURL) URL.revokeObjectURL(lastURL);
    lastURL = url;
  };
  function send(action) { if (ws.readyState === 1) ws.send(JSON.stringify({action})); }
</script>
</body>
</html>
`
