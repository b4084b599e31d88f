// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
)

// dataStructureClause is appended to the explanation when Augment upgrades
// the space label.
const dataStructureClause = " Additional space needed for data structures."

// Augment applies the data-structure space correction to a verdict.
//
// Description:
//
//	When the snippet uses a container and the verdict's space is still
//	O(1), space becomes O(n) and the explanation gains a fixed clause.
//	Time is never touched, and a non-constant space label is left as is.
//
// Inputs:
//
//	v - The classifier's verdict.
//	fs - The feature set v was classified from.
//
// Outputs:
//
//	Verdict - The corrected verdict. v itself is not modified.
func Augment(v Verdict, fs FeatureSet) Verdict {
	if fs.Has(catalog.FeatureDataStructure) && v.Space == LabelConstant {
		v.Space = LabelLinear
		v.Explanation += dataStructureClause
	}
	return v
}
