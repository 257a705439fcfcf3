package model

import (
	"bytes"
	"text/template"

	"github.com/yumyai/protlit/pkg/structure"
)

var viewerTemplate = template.Must(template.New("viewer").Parse(`
<script src="https://3Dmol.org/build/3Dmol-min.js"></script>
<div id="viewer3d" style="width:100%; height:500px; position: relative;"></div>
<script>
  (function () {
    const elt = document.getElementById('viewer3d');
    const viewer = $3Dmol.createViewer(elt, { backgroundColor: 'white' });
    $3Dmol.download('pdb:{{ .ID }}', viewer, {}, function () {
      viewer.setStyle({}, { cartoon: { color: 'spectrum' } });
      {{- range .Hotspots }}
      viewer.addStyle({ chain: '{{ .Chain }}', resi: {{ .SequenceNum }} }, { stick: {} });
      {{- end }}
      viewer.zoomTo();
      viewer.render();
    });
  })();
</script>
`))

// ViewerHTML embeds a 3Dmol.js cartoon of the entry with hotspot residues
// drawn as sticks. id must already be a normalised PDB code.
func ViewerHTML(id string, hotspots []structure.Hotspot) string {
	var shown []structure.Hotspot
	for _, h := range hotspots {
		if isAlnum(h.Chain) {
			shown = append(shown, h)
		}
	}

	var buf bytes.Buffer
	data := struct {
		ID       string
		Hotspots []structure.Hotspot
	}{ID: id, Hotspots: shown}
	if err := viewerTemplate.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
