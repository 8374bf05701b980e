package estree

import (
	"bytes"
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the node in typescript-estree's JSON layout: type,
// fields in declaration order, then range and loc.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encodeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	buf.WriteByte('{')
	first := true
	key := func(name string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(strconv.Quote(name))
		buf.WriteByte(':')
	}
	if n.Type != "" {
		key("type")
		buf.WriteString(strconv.Quote(string(n.Type)))
	}
	for _, f := range n.Fields {
		key(f.Name)
		if err := encodeValueJSON(buf, f.Value); err != nil {
			return err
		}
	}
	if n.Range != nil {
		key("range")
		buf.WriteString("[" + strconv.Itoa(n.Range.Start) + "," + strconv.Itoa(n.Range.End) + "]")
	}
	if n.Loc != nil {
		key("loc")
		buf.WriteString(`{"start":`)
		writePositionJSON(buf, n.Loc.Start)
		buf.WriteString(`,"end":`)
		writePositionJSON(buf, n.Loc.End)
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return nil
}

func writePositionJSON(buf *bytes.Buffer, p Position) {
	buf.WriteString(`{"line":` + strconv.Itoa(p.Line) + `,"column":` + strconv.Itoa(p.Column) + "}")
}

func encodeValueJSON(buf *bytes.Buffer, v Value) error {
	switch v := v.(type) {
	case *Node:
		return v.encodeJSON(buf)
	case NodeList:
		buf.WriteByte('[')
		for i, c := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := c.encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Scalar:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return err
		}
		buf.Write(data)
	default:
		buf.WriteString("null")
	}
	return nil
}

// MarshalYAML encodes the node as an ordered YAML mapping with the same
// layout as MarshalJSON.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.yamlNode(), nil
}

func (n *Node) yamlNode() *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(k string, v *yaml.Node) {
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, v)
	}
	if n.Type != "" {
		add("type", &yaml.Node{Kind: yaml.ScalarNode, Value: string(n.Type)})
	}
	for _, f := range n.Fields {
		add(f.Name, yamlValue(f.Value))
	}
	if n.Range != nil {
		add("range", &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle, Content: []*yaml.Node{
			intNode(n.Range.Start), intNode(n.Range.End),
		}})
	}
	if n.Loc != nil {
		add("loc", &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "start"}, positionNode(n.Loc.Start),
			{Kind: yaml.ScalarNode, Value: "end"}, positionNode(n.Loc.End),
		}})
	}
	return m
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func positionNode(p Position) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "line"}, intNode(p.Line),
		{Kind: yaml.ScalarNode, Value: "column"}, intNode(p.Column),
	}}
}

func yamlValue(v Value) *yaml.Node {
	switch v := v.(type) {
	case *Node:
		return v.yamlNode()
	case NodeList:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range v {
			seq.Content = append(seq.Content, c.yamlNode())
		}
		return seq
	case Scalar:
		switch v.Kind {
		case KindString, KindRegExp:
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
		case KindBigInt:
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str + "n"}
		case KindNumber, KindBool:
			return &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
