// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config provides the ambient configuration and logging for the
string-value regular approximation engine.

Use [Load](filename) to load a configuration from a yaml file. A config
file sets the logging verbosity, a bound on the number of fix-point
rounds the character-set approximation pass is allowed per component,
and the table mapping a non-literal terminal's declared type name (e.g.
"int") to the regex fragment and character set it contributes to the
grammar. A minimal config file looks like:

	log-level: 3
	max-fixpoint-rounds: 64
	type-regex-table:
	  int:
	    pattern: '0|(-?[1-9][0-9]*)'
	    chars: "0123456789-"

Use [NewLogGroup] to build a [LogGroup] from a loaded [Config] and pass it
down to the C5-C8 passes so that fix-point round counts, cycle-breaking
decisions and taint resolution order can be traced at Debug/Trace level.
*/
package config
