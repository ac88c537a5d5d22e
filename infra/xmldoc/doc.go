// Package xmldoc reads and writes the XML documents exchanged with the
// traffic simulator: routes files produced from demand schedules and
// emission or tripinfo logs consumed by trace extraction.
package xmldoc
