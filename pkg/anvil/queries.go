package anvil

import (
	"fmt"
)

// encoding is the wire packaging an operation expects. The mapping from
// operation to encoding is a fixed lookup, never inferred from arguments.
type encoding int

const (
	encodeJSON      encoding = iota // REST request with a JSON body
	encodeGraphQL                   // GraphQL JSON post
	encodeMultipart                 // GraphQL multipart upload when files are attached
	encodeBinary                    // plain GET returning raw bytes
)

// operation describes one supported API call: the REST path or GraphQL
// document, the scalar arguments it requires, the response path to unwrap,
// and the encoding strategy.
type operation struct {
	name     string
	method   string
	path     string // REST path template, one %s per eid argument
	document string
	dataPath []string // unwrap path under the GraphQL "data" envelope
	encoding encoding
	args     []string // required scalar arguments, checked before any call
}

// Operation names, used as registry keys and in error messages.
const (
	opFillPDF             = "fillPDF"
	opGeneratePDF         = "generatePDF"
	opDownloadDocuments   = "downloadDocuments"
	opCurrentUser         = "currentUser"
	opCast                = "cast"
	opCasts               = "casts"
	opWeld                = "weld"
	opWelds               = "welds"
	opCreateEtchPacket    = "createEtchPacket"
	opGenerateEtchSignURL = "generateEtchSignURL"
	opForgeSubmit         = "forgeSubmit"
	opEtchPackets         = "etchPackets"
)

var operations = map[string]operation{
	opFillPDF: {
		name:     opFillPDF,
		method:   "POST",
		path:     "/api/v1/fill/%s.pdf",
		encoding: encodeJSON,
		args:     []string{"templateEid"},
	},
	opGeneratePDF: {
		name:     opGeneratePDF,
		method:   "POST",
		path:     "/api/v1/generate-pdf",
		encoding: encodeJSON,
	},
	opDownloadDocuments: {
		name:     opDownloadDocuments,
		method:   "GET",
		path:     "/api/document-group/%s.zip",
		encoding: encodeBinary,
		args:     []string{"documentGroupEid"},
	},
	opCurrentUser: {
		name:     opCurrentUser,
		document: queryCurrentUser,
		dataPath: []string{"currentUser"},
		encoding: encodeGraphQL,
	},
	opCast: {
		name:     opCast,
		document: queryCast,
		dataPath: []string{"cast"},
		encoding: encodeGraphQL,
		args:     []string{"eid"},
	},
	opCasts: {
		name:     opCasts,
		document: queryCasts,
		dataPath: []string{"currentUser", "organizations"},
		encoding: encodeGraphQL,
	},
	opWeld: {
		name:     opWeld,
		document: queryWeld,
		dataPath: []string{"weld"},
		encoding: encodeGraphQL,
		args:     []string{"eid"},
	},
	opWelds: {
		name:     opWelds,
		document: queryWelds,
		dataPath: []string{"currentUser", "organizations"},
		encoding: encodeGraphQL,
	},
	opCreateEtchPacket: {
		name:     opCreateEtchPacket,
		document: mutationCreateEtchPacket,
		dataPath: []string{"createEtchPacket"},
		encoding: encodeMultipart,
	},
	opGenerateEtchSignURL: {
		name:     opGenerateEtchSignURL,
		document: mutationGenerateEtchSignURL,
		dataPath: []string{"generateEtchSignURL"},
		encoding: encodeGraphQL,
		args:     []string{"signerEid", "clientUserId"},
	},
	opForgeSubmit: {
		name:     opForgeSubmit,
		document: mutationForgeSubmit,
		dataPath: []string{"forgeSubmit"},
		encoding: encodeGraphQL,
	},
	opEtchPackets: {
		name:     opEtchPackets,
		document: queryEtchPackets,
		dataPath: []string{"etchPackets"},
		encoding: encodeGraphQL,
	},
}

// lookupOperation fetches a registry entry. Unknown names are a programming
// error, not caller input.
func lookupOperation(name string) operation {
	op, ok := operations[name]
	if !ok {
		panic(fmt.Sprintf("anvil: unknown operation %q", name))
	}
	return op
}

// requireArgs rejects empty scalar arguments before any payload is built.
func (op operation) requireArgs(args map[string]string) error {
	for _, name := range op.args {
		if args[name] == "" {
			return &ValidationError{
				Message: fmt.Sprintf("%s: %s cannot be empty", op.name, name),
				Fields:  []string{name},
			}
		}
	}
	return nil
}

// Pre-authored GraphQL documents, one per operation.

const queryCurrentUser = `query CurrentUser {
  currentUser {
    eid
    name
    email
    role
    organizations {
      eid
      name
      slug
      casts {
        eid
        title
      }
    }
  }
}`

const queryCast = `query Cast($eid: String!, $versionNumber: Int) {
  cast(eid: $eid, versionNumber: $versionNumber) {
    eid
    title
    fieldInfo
  }
}`

const queryCasts = `query Casts($isTemplate: Boolean) {
  currentUser {
    organizations {
      eid
      casts(isTemplate: $isTemplate) {
        eid
        title
        fieldInfo
      }
    }
  }
}`

const queryWeld = `query Weld($eid: String!) {
  weld(eid: $eid) {
    eid
    slug
    name
    forges {
      eid
      name
      slug
    }
  }
}`

const queryWelds = `query Welds {
  currentUser {
    organizations {
      eid
      welds {
        eid
        slug
        title
        forges {
          eid
          name
        }
      }
    }
  }
}`

const mutationCreateEtchPacket = `mutation CreateEtchPacket(
  $name: String!,
  $files: [EtchFile!],
  $signers: [JSON!],
  $isDraft: Boolean,
  $isTest: Boolean,
  $signatureEmailSubject: String,
  $signatureEmailBody: String,
  $webhookURL: String,
  $data: JSON
) {
  createEtchPacket(
    name: $name,
    files: $files,
    signers: $signers,
    isDraft: $isDraft,
    isTest: $isTest,
    signatureEmailSubject: $signatureEmailSubject,
    signatureEmailBody: $signatureEmailBody,
    webhookURL: $webhookURL,
    data: $data
  ) {
    eid
    name
    status
    detailsURL
    documentGroup {
      id
      eid
      status
      signers {
        eid
        aliasId
        name
        email
        status
        routingOrder
        signActionType
      }
    }
  }
}`

const mutationGenerateEtchSignURL = `mutation GenerateEtchSignURL($signerEid: String!, $clientUserId: String!) {
  generateEtchSignURL(signerEid: $signerEid, clientUserId: $clientUserId)
}`

const mutationForgeSubmit = `mutation ForgeSubmit(
  $forgeEid: String!,
  $weldDataEid: String,
  $submissionEid: String,
  $payload: JSON!,
  $currentStep: Int,
  $complete: Boolean,
  $isTest: Boolean,
  $groupArrayId: String,
  $groupArrayIndex: Int
) {
  forgeSubmit(
    forgeEid: $forgeEid,
    weldDataEid: $weldDataEid,
    submissionEid: $submissionEid,
    payload: $payload,
    currentStep: $currentStep,
    complete: $complete,
    isTest: $isTest,
    groupArrayId: $groupArrayId,
    groupArrayIndex: $groupArrayIndex
  ) {
    eid
    status
    createdAt
    payloadValue
  }
}`

const queryEtchPackets = `query EtchPackets($organizationEid: String, $cursor: String, $limit: Int) {
  etchPackets(organizationEid: $organizationEid, cursor: $cursor, limit: $limit) {
    items {
      eid
      name
      status
      detailsURL
      createdAt
    }
    pageInfo {
      endCursor
      hasNextPage
    }
  }
}`
