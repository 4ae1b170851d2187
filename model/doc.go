// Package model provides the intermediate representation shared by every
// stage of the pipeline.
//
// Analysis produces an [AnalysisResult]: recognized [TextElement] values,
// detected [ImageRegion] values, a ranked [ColorPalette], and a classified
// [Layout]. Template synthesis converts an AnalysisResult into a [Template]
// of addressable [TemplateElement] values, and mutation accumulates
// [Override] records against it.
//
// All types are plain serializable values. Elements are referenced by their
// stable string ids, never by object identity, so results can cross worker
// and storage boundaries safely.
package model
