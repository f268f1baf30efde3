// Package serde is a small visitor-style serialization framework.
//
// A type describes itself to a Serializer by calling its methods (a string,
// a sequence, a struct with named fields, ...). A Deserializer drives a
// Visitor with whatever the input actually contains; the Visitor decides
// whether that is acceptable. Formats implement Serializer and Deserializer
// once and every Serializable/Deserializable type works with all of them.
//
//	data, err := cborfmt.Marshal(doc)
//	err = cborfmt.Unmarshal(data, &doc)
//
// Self-describing formats call DeserializeAny for everything; DeserializeStruct
// exists so formats that know struct names can hand them to the visitor.
package serde
